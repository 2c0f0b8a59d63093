package desc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackMachineBody_ContainsSuperInvoke(t *testing.T) {
	jType := Class("J")
	proto := NewProto(Primitive(PrimInt))
	target := NewMethodRef(jType, "f", proto)

	body := NewStackMachineBody([]Instruction{{Opcode: "nop"}}, target)

	assert.True(t, body.ContainsSuperInvoke(target))
	assert.False(t, body.ContainsSuperInvoke(NewMethodRef(Class("K"), "f", proto)))
}

func TestStackMachineBody_WithLeadingParameterPreservesSuperCalls(t *testing.T) {
	jType := Class("J")
	proto := NewProto(Primitive(PrimInt))
	target := NewMethodRef(jType, "f", proto)

	body := NewStackMachineBody(nil, target)
	rewritten := body.WithLeadingParameter()

	require.IsType(t, &StackMachineBody{}, rewritten)
	assert.True(t, rewritten.ContainsSuperInvoke(target))
}

func TestRegisterMachineBody_WithLeadingParameterIncrementsRegisters(t *testing.T) {
	body := NewRegisterMachineBody(3, nil)
	rewritten := body.WithLeadingParameter().(*RegisterMachineBody)
	assert.Equal(t, 4, rewritten.Registers)
}

package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianglei12138/deshim/internal/desc"
)

func intProto() desc.Proto { return desc.NewProto(desc.Primitive(desc.PrimInt)) }

func TestBuilder_EmptyProducesNilLens(t *testing.T) {
	b := NewBuilder()
	assert.True(t, b.Empty())
	assert.Nil(t, b.Build())
}

func TestBuilder_MoveIsForwardAndBackwardTotal(t *testing.T) {
	b := NewBuilder()
	old := desc.NewMethodRef(desc.Class("I"), "f", intProto())
	new := desc.NewMethodRef(desc.Class("I$$CC"), "f", intProto())
	b.Move(old, new)

	l := b.Build()
	require.NotNil(t, l)

	next, ok := l.NextMethodSignature(old)
	require.True(t, ok)
	assert.Equal(t, new, next)

	orig, ok := l.OriginalMethodSignature(new)
	require.True(t, ok)
	assert.Equal(t, old, orig)
}

func TestBuilder_MoveToSelfIsNoOp(t *testing.T) {
	b := NewBuilder()
	ref := desc.NewMethodRef(desc.Class("I"), "f", intProto())
	b.Move(ref, ref)
	assert.True(t, b.Empty())
}

func TestBuilder_MergeCombinesDisjointInterfaces(t *testing.T) {
	a := NewBuilder()
	oldA := desc.NewMethodRef(desc.Class("I"), "f", intProto())
	newA := desc.NewMethodRef(desc.Class("I$$CC"), "f", intProto())
	a.Move(oldA, newA)

	b := NewBuilder()
	oldB := desc.NewMethodRef(desc.Class("J"), "g", intProto())
	newB := desc.NewMethodRef(desc.Class("J$$CC"), "g", intProto())
	b.Move(oldB, newB)

	a.Merge(b)
	moves := a.Moves()
	require.Len(t, moves, 2)
}

func TestBuilder_ToggleMappingToExtraMethodsSwapsInverse(t *testing.T) {
	// A moved default method's companion implementation can legitimately
	// claim two different "original" references: the abstract shim left on
	// the interface (recorded via Move) and the virtual method it was
	// copied from, if that differs from the shim (recorded via
	// RecordOrigin). Toggle picks which one OriginalMethodSignature answers.
	b := NewBuilder()
	shim := desc.NewMethodRef(desc.Class("I"), "f", intProto())
	companionImpl := desc.NewMethodRef(desc.Class("I$$CC"), "f$dflt", intProto())
	virtualOrigin := desc.NewMethodRef(desc.Class("I"), "f$original", intProto())

	b.Move(shim, companionImpl)
	b.RecordOrigin(companionImpl, virtualOrigin)

	l := b.Build()
	require.NotNil(t, l)

	orig, ok := l.OriginalMethodSignature(companionImpl)
	require.True(t, ok)
	assert.Equal(t, shim, orig)

	l.ToggleMappingToExtraMethods()
	orig, ok = l.OriginalMethodSignature(companionImpl)
	require.True(t, ok)
	assert.Equal(t, virtualOrigin, orig)
}

func TestLens_MapInvocationTypeAlwaysReportsStatic(t *testing.T) {
	b := NewBuilder()
	old := desc.NewMethodRef(desc.Class("I"), "f", intProto())
	new := desc.NewMethodRef(desc.Class("I$$CC"), "f", intProto())
	b.Move(old, new)

	l := b.Build()
	require.NotNil(t, l)
	assert.Equal(t, Static, l.MapInvocationType(new, old, Virtual))
}

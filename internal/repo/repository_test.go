package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianglei12138/deshim/internal/desc"
)

func TestRepository_PublishAndGet(t *testing.T) {
	r := NewRepository()
	c := NewClass(desc.Class("I"), nil, nil, Program)

	require.NoError(t, r.Publish(c))

	got, ok := r.Get(desc.Class("I"))
	require.True(t, ok)
	assert.Same(t, c, got)
}

func TestRepository_PublishRejectsDuplicate(t *testing.T) {
	r := NewRepository()
	require.NoError(t, r.Publish(NewClass(desc.Class("I"), nil, nil, Program)))
	err := r.Publish(NewClass(desc.Class("I"), nil, nil, Program))
	assert.Error(t, err)
}

func TestRepository_PublishRejectedWhileFrozen(t *testing.T) {
	r := NewRepository()
	r.Freeze()
	err := r.Publish(NewClass(desc.Class("I"), nil, nil, Program))
	assert.Error(t, err)

	r.Unfreeze()
	assert.NoError(t, r.Publish(NewClass(desc.Class("I"), nil, nil, Program)))
}

func TestRepository_ReplaceMutatesInPlace(t *testing.T) {
	r := NewRepository()
	iType := desc.Class("I")
	require.NoError(t, r.Publish(NewInterface(iType, nil, Program)))

	err := r.Replace(iType, func(c *ClassDefinition) {
		c.SourceFile = "I.java"
	})
	require.NoError(t, err)

	got, _ := r.Get(iType)
	assert.Equal(t, "I.java", got.SourceFile)
}

func TestRepository_ReplaceRejectedWhileFrozen(t *testing.T) {
	r := NewRepository()
	iType := desc.Class("I")
	require.NoError(t, r.Publish(NewInterface(iType, nil, Program)))
	r.Freeze()

	err := r.Replace(iType, func(c *ClassDefinition) {})
	assert.Error(t, err)
}

func TestRepository_ProgramAndLibraryInterfacesAreSortedAndFiltered(t *testing.T) {
	r := NewRepository()
	require.NoError(t, r.Publish(NewInterface(desc.Class("Z"), nil, Program)))
	require.NoError(t, r.Publish(NewInterface(desc.Class("A"), nil, Program)))
	require.NoError(t, r.Publish(NewClass(desc.Class("NotAnInterface"), nil, nil, Program)))
	require.NoError(t, r.Publish(NewInterface(desc.Class("Lib"), nil, Library)))

	program := r.ProgramInterfaces()
	require.Len(t, program, 2)
	assert.Equal(t, desc.Class("A"), program[0].Type)
	assert.Equal(t, desc.Class("Z"), program[1].Type)

	lib := r.LibraryInterfaces()
	require.Len(t, lib, 1)
	assert.Equal(t, desc.Class("Lib"), lib[0].Type)
}

func TestClassDefinition_LookupMethodChecksDirectBeforeVirtual(t *testing.T) {
	c := NewClass(desc.Class("I"), nil, nil, Program)
	proto := desc.NewProto(desc.Primitive(desc.PrimInt))
	ref := desc.NewMethodRef(desc.Class("I"), "f", proto)
	direct := desc.NewMethodDefinition(ref, desc.FlagStatic, nil)
	c.DirectMethods = []*desc.MethodDefinition{direct}

	assert.Same(t, direct, c.LookupMethod(ref))
	assert.Nil(t, c.LookupMethod(desc.NewMethodRef(desc.Class("I"), "g", proto)))
}

func TestClassDefinition_ChecksumSupplierIsLazyAndCachedOnce(t *testing.T) {
	c := NewClass(desc.Class("I$$CC"), nil, nil, Program)
	calls := 0
	c.SetChecksumSupplier(func(*ClassDefinition) uint64 {
		calls++
		return 42
	})

	assert.Equal(t, uint64(42), c.Checksum())
	assert.Equal(t, uint64(42), c.Checksum())
	assert.Equal(t, 1, calls)
}

package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianglei12138/deshim/internal/desc"
)

func TestChain_FindReturnsNilOnIdentity(t *testing.T) {
	assert.Nil(t, Find(Identity))
}

func TestChain_PushAndFindReturnsMostRecentlyPushed(t *testing.T) {
	b1 := NewBuilder()
	b1.Move(desc.NewMethodRef(desc.Class("I"), "f", intProto()), desc.NewMethodRef(desc.Class("I$$CC"), "f", intProto()))
	l1 := b1.Build()

	b2 := NewBuilder()
	b2.Move(desc.NewMethodRef(desc.Class("J"), "g", intProto()), desc.NewMethodRef(desc.Class("J$$CC"), "g", intProto()))
	l2 := b2.Build()

	chain := Push(Push(Identity, l1), l2)

	found := Find(chain)
	require.NotNil(t, found)
	assert.Same(t, l2.(*interfaceLens), found)
}

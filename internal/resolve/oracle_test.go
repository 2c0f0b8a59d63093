package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/repo"
)

func intProto() desc.Proto { return desc.NewProto(desc.Primitive(desc.PrimInt)) }

func TestOracle_ResolveFindsDirectMethodOnExactHolder(t *testing.T) {
	r := repo.NewRepository()
	iType := desc.Class("I")
	ref := desc.NewMethodRef(iType, "f", intProto())

	iface := repo.NewInterface(iType, nil, repo.Program)
	iface.DirectMethods = []*desc.MethodDefinition{desc.NewMethodDefinition(ref, desc.FlagStatic, nil)}
	require.NoError(t, r.Publish(iface))

	res := NewOracle(r).Resolve(iType, ref)
	assert.Equal(t, Resolved, res.Kind)
	assert.Equal(t, iType, res.Holder)
}

func TestOracle_ResolveFallsThroughSuperClassBeforeInterface(t *testing.T) {
	r := repo.NewRepository()
	objType, superType, subType := desc.Class("Object"), desc.Class("Super"), desc.Class("Sub")
	ifaceType := desc.Class("I")
	ref := desc.NewMethodRef(ifaceType, "f", intProto())

	require.NoError(t, r.Publish(repo.NewClass(objType, nil, nil, repo.Library)))

	superClassRef := ref.WithHolder(superType)
	superClass := repo.NewClass(superType, &objType, nil, repo.Program)
	superClass.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(superClassRef, desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(superClass))

	iface := repo.NewInterface(ifaceType, nil, repo.Program)
	iface.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(ref, desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(iface))

	sub := repo.NewClass(subType, &superType, []desc.TypeDescriptor{ifaceType}, repo.Program)
	require.NoError(t, r.Publish(sub))

	res := NewOracle(r).Resolve(subType, ref.WithHolder(subType))
	require.Equal(t, Resolved, res.Kind)
	assert.Equal(t, superType, res.Holder)
}

func TestOracle_ResolveDetectsAmbiguousDefaults(t *testing.T) {
	r := repo.NewRepository()
	jType, kType, subType := desc.Class("J"), desc.Class("K"), desc.Class("Sub")
	ref := desc.NewMethodRef(desc.Class("Common"), "f", intProto())

	j := repo.NewInterface(jType, nil, repo.Program)
	j.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(ref.WithHolder(jType), desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(j))

	k := repo.NewInterface(kType, nil, repo.Program)
	k.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(ref.WithHolder(kType), desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(k))

	sub := repo.NewClass(subType, nil, []desc.TypeDescriptor{jType, kType}, repo.Program)
	require.NoError(t, r.Publish(sub))

	res := NewOracle(r).Resolve(subType, desc.NewMethodRef(subType, "f", intProto()))
	assert.Equal(t, Ambiguous, res.Kind)
	assert.Len(t, res.Candidates, 2)
}

// J1 and J2 both extend J0, which declares a default; J1 overrides it with
// its own default. Sub implements J1 and J2. J1's default should shadow
// J0's -- they are related, not the "two unrelated super-interfaces" case
// -- so resolution must find exactly one candidate, not report Ambiguous.
func TestOracle_ResolveDiamondShadowingIsNotAmbiguous(t *testing.T) {
	r := repo.NewRepository()
	j0Type, j1Type, j2Type, subType := desc.Class("J0"), desc.Class("J1"), desc.Class("J2"), desc.Class("Sub")
	ref := desc.NewMethodRef(desc.Class("Common"), "f", intProto())

	j0 := repo.NewInterface(j0Type, nil, repo.Program)
	j0.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(ref.WithHolder(j0Type), desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(j0))

	j1 := repo.NewInterface(j1Type, []desc.TypeDescriptor{j0Type}, repo.Program)
	j1.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(ref.WithHolder(j1Type), desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(j1))

	j2 := repo.NewInterface(j2Type, []desc.TypeDescriptor{j0Type}, repo.Program)
	require.NoError(t, r.Publish(j2))

	sub := repo.NewClass(subType, nil, []desc.TypeDescriptor{j1Type, j2Type}, repo.Program)
	require.NoError(t, r.Publish(sub))

	res := NewOracle(r).Resolve(subType, desc.NewMethodRef(subType, "f", intProto()))
	require.Equal(t, Resolved, res.Kind)
	assert.Equal(t, j1Type, res.Holder)
}

func TestOracle_SupertypesOfOrdersBfsAndTagsInterfaceEdges(t *testing.T) {
	r := repo.NewRepository()
	objType, superType, ifaceType, subType := desc.Class("Object"), desc.Class("Super"), desc.Class("I"), desc.Class("Sub")

	require.NoError(t, r.Publish(repo.NewClass(objType, nil, nil, repo.Library)))
	require.NoError(t, r.Publish(repo.NewClass(superType, &objType, nil, repo.Program)))
	require.NoError(t, r.Publish(repo.NewInterface(ifaceType, nil, repo.Program)))
	sub := repo.NewClass(subType, &superType, []desc.TypeDescriptor{ifaceType}, repo.Program)
	require.NoError(t, r.Publish(sub))

	edges := NewOracle(r).SupertypesOf(sub)
	require.Len(t, edges, 3)
	assert.Equal(t, superType, edges[0].Class.Type)
	assert.False(t, edges[0].ViaInterface)
	assert.Equal(t, ifaceType, edges[1].Class.Type)
	assert.True(t, edges[1].ViaInterface)
	assert.Equal(t, objType, edges[2].Class.Type)
}

func TestOracle_SubtypesOfFindsTransitiveImplementors(t *testing.T) {
	r := repo.NewRepository()
	ifaceType, midType, leafType := desc.Class("I"), desc.Class("Mid"), desc.Class("Leaf")

	require.NoError(t, r.Publish(repo.NewInterface(ifaceType, nil, repo.Program)))
	mid := repo.NewClass(midType, nil, []desc.TypeDescriptor{ifaceType}, repo.Program)
	require.NoError(t, r.Publish(mid))
	leaf := repo.NewClass(leafType, &midType, nil, repo.Program)
	require.NoError(t, r.Publish(leaf))

	subs := NewOracle(r).SubtypesOf(ifaceType)
	require.Len(t, subs, 2)
}

func TestOracle_IsSubtype(t *testing.T) {
	r := repo.NewRepository()
	ifaceType, implType := desc.Class("I"), desc.Class("Impl")
	require.NoError(t, r.Publish(repo.NewInterface(ifaceType, nil, repo.Program)))
	require.NoError(t, r.Publish(repo.NewClass(implType, nil, []desc.TypeDescriptor{ifaceType}, repo.Program)))

	o := NewOracle(r)
	assert.True(t, o.IsSubtype(implType, ifaceType))
	assert.False(t, o.IsSubtype(ifaceType, implType))
	assert.True(t, o.IsSubtype(implType, implType))
}

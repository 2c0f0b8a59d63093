package desugar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianglei12138/deshim/internal/config"
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/lens"
	"github.com/jianglei12138/deshim/internal/naming"
	"github.com/jianglei12138/deshim/internal/plan"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/resolve"
)

func intProto() desc.Proto { return desc.NewProto(desc.Primitive(desc.PrimInt)) }

// End-to-end version of spec.md §8 scenario 1: interface I { default int
// f(){return 7;} } desugars to an abstract interface plus a companion.
func TestRun_DefaultAloneEndToEnd(t *testing.T) {
	r := repo.NewRepository()
	iType := desc.Class("I")
	ref := desc.NewMethodRef(iType, "f", intProto())
	method := desc.NewMethodDefinition(ref, desc.FlagPublic, desc.NewStackMachineBody(nil))

	iface := repo.NewInterface(iType, nil, repo.Program)
	iface.VirtualMethods = []*desc.MethodDefinition{method}
	require.NoError(t, r.Publish(iface))

	oracle := resolve.NewOracle(r)
	opts := config.Default()
	opts.Workers = 1
	opts.LogLevel = config.LogSilent

	result, err := Run(context.Background(), Request{
		Repo:       r,
		Oracle:     oracle,
		Options:    opts,
		PriorChain: lens.Identity,
	})
	require.NoError(t, err)
	assert.False(t, result.Failed)
	require.NotNil(t, result.Lens)

	companion, ok := r.Get(naming.CompanionOf(iType))
	require.True(t, ok)
	require.Len(t, companion.DirectMethods, 1)

	newRef, ok := result.Lens.NextMethodSignature(ref)
	require.True(t, ok)
	assert.Equal(t, companion.DirectMethods[0].Ref, newRef)

	rewritten, ok := r.Get(iType)
	require.True(t, ok)
	require.Len(t, rewritten.VirtualMethods, 1)
	assert.True(t, rewritten.VirtualMethods[0].Flags.IsAbstract())
}

// scenario 5: a non-movable default fails the run but does not panic or
// leave the repository in a half-synthesized state for that interface.
func TestRun_NonMovableDefaultReportsFatal(t *testing.T) {
	r := repo.NewRepository()
	jType, iType := desc.Class("J"), desc.Class("I")
	fOnJ := desc.NewMethodRef(jType, "f", intProto())

	jIface := repo.NewInterface(jType, nil, repo.Program)
	jIface.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(fOnJ, desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(jIface))

	fOnI := desc.NewMethodRef(iType, "f", intProto())
	body := desc.NewStackMachineBody(nil, fOnJ)
	iIface := repo.NewInterface(iType, []desc.TypeDescriptor{jType}, repo.Program)
	iIface.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(fOnI, desc.FlagPublic, body),
	}
	require.NoError(t, r.Publish(iIface))

	oracle := resolve.NewOracle(r)
	opts := config.Default()
	opts.Workers = 1
	opts.LogLevel = config.LogSilent

	result, err := Run(context.Background(), Request{Repo: r, Oracle: oracle, Options: opts})
	require.NoError(t, err)
	assert.True(t, result.Failed)
	require.Len(t, result.Fatals, 1)

	_, hasCompanion := r.Get(naming.CompanionOf(iType))
	assert.False(t, hasCompanion)
}

// scenario 6: a non-final virtual platform method retargeted into a compat
// library produces an EmulatedVirtualRetarget whose dispatch class and lens
// moves actually land in Result, not just in the raw retarget list.
func TestRun_EmulatedVirtualRetargetEndToEnd(t *testing.T) {
	r := repo.NewRepository()
	dateType := desc.Class("java.util.Date")
	source := desc.NewMethodRef(dateType, "toInstant", desc.NewProto(desc.Class("java.time.Instant")))

	dateClass := repo.NewClass(dateType, nil, nil, repo.Library)
	dateClass.VirtualMethods = []*desc.MethodDefinition{
		desc.NewMethodDefinition(source, desc.FlagPublic, desc.NewStackMachineBody(nil)),
	}
	require.NoError(t, r.Publish(dateClass))

	subType := desc.Class("com.example.MyDate")
	subClass := repo.NewClass(subType, &dateType, nil, repo.Program)
	require.NoError(t, r.Publish(subClass))

	oracle := resolve.NewOracle(r)
	opts := config.Default()
	opts.Workers = 1
	opts.LogLevel = config.LogSilent

	compatHolder := desc.Class("j$.util.DesugarDate")
	result, err := Run(context.Background(), Request{
		Repo:       r,
		Oracle:     oracle,
		Options:    opts,
		PriorChain: lens.Identity,
		RetargetMembers: map[desc.MethodRef]desc.TypeDescriptor{
			source: compatHolder,
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Failed)
	require.Len(t, result.Retargets, 1)
	assert.Equal(t, plan.EmulatedVirtualRetarget, result.Retargets[0].Kind)

	require.NotNil(t, result.Lens)
	target, ok := result.Lens.NextMethodSignature(source)
	require.True(t, ok)
	assert.Equal(t, compatHolder, target.Holder)

	dispatch, ok := r.Get(compatHolder)
	require.True(t, ok)
	require.Len(t, dispatch.DirectMethods, 1)
	assert.Equal(t, target, dispatch.DirectMethods[0].Ref)
}

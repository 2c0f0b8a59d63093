package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/plan"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/report"
	"github.com/jianglei12138/deshim/internal/resolve"
	"github.com/jianglei12138/deshim/internal/synth"
)

func intProto() desc.Proto { return desc.NewProto(desc.Primitive(desc.PrimInt)) }

func buildDesugaredFixture(t *testing.T) (*repo.Repository, *plan.InterfacePlan) {
	r := repo.NewRepository()
	iType := desc.Class("I")
	ref := desc.NewMethodRef(iType, "f", intProto())
	method := desc.NewMethodDefinition(ref, desc.FlagPublic, desc.NewStackMachineBody(nil))

	iface := repo.NewInterface(iType, nil, repo.Program)
	iface.VirtualMethods = []*desc.MethodDefinition{method}
	require.NoError(t, r.Publish(iface))
	r.Freeze()

	p := &plan.Planner{Oracle: resolve.NewOracle(r), Repo: r, Liveness: plan.NopLiveness{}, Reporter: report.New(0)}
	ip := p.PlanInterface(iface)
	require.False(t, ip.Failed)

	s := synth.New(r, report.New(0), false)
	require.NoError(t, s.SynthesizeAll(plan.Result{InterfacePlans: []*plan.InterfacePlan{ip}}))

	return r, ip
}

func TestCheckAll_PassesOnWellFormedDesugaring(t *testing.T) {
	r, ip := buildDesugaredFixture(t)

	oracle := resolve.NewOracle(r)
	reporter := report.New(0)
	c := New(r, oracle, plan.NopLiveness{}, reporter)

	finalLens := ip.Lens.Build()
	ok := c.CheckAll(ip.Lens, finalLens)

	assert.True(t, ok)
	assert.False(t, reporter.Failed())
}

func TestCheckAll_CatchesNonAbstractVirtualMethod(t *testing.T) {
	r, _ := buildDesugaredFixture(t)
	iType := desc.Class("I")

	// Corrupt the post-synthesis state directly: leave a non-abstract
	// virtual method on the interface, simulating a synthesizer bug.
	// Synthesis leaves the repository frozen, and Replace refuses to mutate
	// a frozen repository, so unfreeze it first.
	ref := desc.NewMethodRef(iType, "bogus", intProto())
	r.Unfreeze()
	require.NoError(t, r.Replace(iType, func(c *repo.ClassDefinition) {
		c.VirtualMethods = append(c.VirtualMethods, desc.NewMethodDefinition(ref, desc.FlagPublic, desc.NewStackMachineBody(nil)))
	}))

	oracle := resolve.NewOracle(r)
	reporter := report.New(0)
	c := New(r, oracle, plan.NopLiveness{}, reporter)

	ok := c.CheckAll(nil, nil)
	assert.False(t, ok)
}

func TestCheckRetargetOverrides_FlagsOverriddenSubtype(t *testing.T) {
	r := repo.NewRepository()
	holder := desc.Class("java.util.Date")
	subtype := desc.Class("com.example.MyDate")
	ref := desc.NewMethodRef(holder, "toInstant", desc.NewProto(desc.Class("java.time.Instant")))

	cls := repo.NewClass(holder, nil, nil, repo.Library)
	cls.VirtualMethods = []*desc.MethodDefinition{desc.NewMethodDefinition(ref, desc.FlagPublic, nil)}
	require.NoError(t, r.Publish(cls))

	sub := repo.NewClass(subtype, &holder, nil, repo.Program)
	subRef := desc.NewMethodRef(subtype, "toInstant", ref.Proto)
	sub.VirtualMethods = []*desc.MethodDefinition{desc.NewMethodDefinition(subRef, desc.FlagPublic, desc.NewStackMachineBody(nil))}
	require.NoError(t, r.Publish(sub))
	r.Freeze()

	oracle := resolve.NewOracle(r)
	reporter := report.New(0)
	c := New(r, oracle, plan.NopLiveness{}, reporter)

	retargets := []plan.RetargetDescriptor{{Kind: plan.EmulatedVirtualRetarget, Source: ref}}
	ok := c.CheckRetargetOverrides(retargets)
	assert.False(t, ok)
}

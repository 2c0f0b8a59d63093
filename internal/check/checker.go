// Package check implements the invariant checker: after synthesis, it
// re-verifies every post-condition listed in spec.md §3 and §4.7. Findings
// are reported through report.ReportICE, since a violation at this point is
// a bug in the planner or synthesizer, not in the input program.
package check

import (
	"github.com/jianglei12138/deshim/internal/common"
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/lens"
	"github.com/jianglei12138/deshim/internal/naming"
	"github.com/jianglei12138/deshim/internal/plan"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/report"
	"github.com/jianglei12138/deshim/internal/resolve"
)

// Checker runs the post-synthesis invariant checks.
type Checker struct {
	Repo     *repo.Repository
	Oracle   *resolve.Oracle
	Liveness plan.LivenessOracle
	Reporter *report.Reporter
}

// New builds a Checker.
func New(r *repo.Repository, oracle *resolve.Oracle, liveness plan.LivenessOracle, reporter *report.Reporter) *Checker {
	return &Checker{Repo: r, Oracle: oracle, Liveness: liveness, Reporter: reporter}
}

// CheckAll verifies every program interface's per-class invariants, the
// companion/dispatch-contains-moved-method invariant implied by builder's
// recorded moves, and the finalized lens's bijection over that same domain.
// It returns false if any violation was found (each violation is also
// reported as an ICE).
func (c *Checker) CheckAll(builder *lens.Builder, finalLens lens.Lens) bool {
	ok := true

	for _, iface := range c.Repo.ProgramInterfaces() {
		if !c.checkInterfaceInvariants(iface) {
			ok = false
		}
	}

	if builder != nil {
		if !c.checkMovesLandedOnTarget(builder.Moves()) {
			ok = false
		}
		if finalLens != nil && !c.checkLensTotality(builder.Moves(), finalLens) {
			ok = false
		}
	}

	return ok
}

// checkInterfaceInvariants enforces spec.md §3's per-interface invariants:
// no non-abstract virtual method, no direct method besides <clinit>, and
// the shim-abstractness property of spec.md §8 ("for every method m
// remaining on a program interface post-pass, m.abstract ∧ ¬m.bridge ∨
// m.pinned").
func (c *Checker) checkInterfaceInvariants(iface *repo.ClassDefinition) bool {
	ok := true

	for _, m := range iface.VirtualMethods {
		if !m.IsAbstract() {
			c.Reporter.ReportICE("interface %s retains non-abstract virtual method %s after desugaring", iface.Type, m.Ref)
			ok = false
			continue
		}
		if m.Flags.IsBridge() && !c.Liveness.IsPinned(m.Ref) {
			c.Reporter.ReportICE("interface %s retains bridge method %s that was neither pinned nor proven API-preserving to drop", iface.Type, m.Ref)
			ok = false
		}
	}

	for _, d := range iface.DirectMethods {
		if d.Ref.Name != common.ClassInitializerName {
			c.Reporter.ReportICE("interface %s retains non-initializer direct method %s after desugaring", iface.Type, d.Ref)
			ok = false
		}
	}

	return ok
}

// checkMovesLandedOnTarget verifies that for every move whose new holder is
// a companion or dispatch class, that class was actually published and
// contains the moved method -- the "for every moved method M ... C
// contains a public static method" invariant of spec.md §3.
func (c *Checker) checkMovesLandedOnTarget(moves []lens.Move) bool {
	ok := true
	for _, mv := range moves {
		if _, isCompanion := naming.InterfaceOfCompanion(mv.New.Holder); isCompanion {
			if !c.methodLandedOn(mv.New.Holder, mv.New) {
				c.Reporter.ReportICE("companion class %s does not contain moved method %s", mv.New.Holder, mv.New)
				ok = false
			}
			continue
		}
		if _, isDispatch := naming.InterfaceOfDispatch(mv.New.Holder); isDispatch {
			if !c.methodLandedOn(mv.New.Holder, mv.New) {
				c.Reporter.ReportICE("dispatch class %s does not contain forwarder %s", mv.New.Holder, mv.New)
				ok = false
			}
		}
	}
	return ok
}

func (c *Checker) methodLandedOn(holder desc.TypeDescriptor, ref desc.MethodRef) bool {
	cls, ok := c.Repo.Get(holder)
	if !ok {
		return false
	}
	return cls.LookupMethod(ref) != nil
}

// checkLensTotality verifies spec.md §3's "the lens is total" invariant
// over every move's domain: forward then backward (and backward then
// forward) must round-trip.
func (c *Checker) checkLensTotality(moves []lens.Move, l lens.Lens) bool {
	ok := true
	for _, mv := range moves {
		newRef, found := l.NextMethodSignature(mv.Old)
		if !found || newRef != mv.New {
			c.Reporter.ReportICE("lens is not total: %s has no forward mapping to %s", mv.Old, mv.New)
			ok = false
		}
		oldRef, found := l.OriginalMethodSignature(mv.New)
		if !found || oldRef != mv.Old {
			c.Reporter.ReportICE("lens is not total: %s has no reverse mapping to %s", mv.New, mv.Old)
			ok = false
		}
	}
	return ok
}

// CheckRetargetOverrides re-verifies, post-synthesis, that no subtype
// overrides a method that was accepted into an EmulatedVirtualRetarget
// (spec.md §4.7's validateNoOverride). The planner already gates on this
// before accepting a retarget; this is the independent post-hoc check the
// invariant checker owns.
func (c *Checker) CheckRetargetOverrides(retargets []plan.RetargetDescriptor) bool {
	ok := true
	for _, rt := range retargets {
		if rt.Kind != plan.EmulatedVirtualRetarget {
			continue
		}
		for _, sub := range c.Oracle.SubtypesOf(rt.Source.Holder) {
			if overridesSignature(sub, rt.Source) {
				c.Reporter.ReportICE("subtype %s overrides emulated-retargeted method %s, bypassing dispatch", sub.Type, rt.Source)
				ok = false
			}
		}
	}
	return ok
}

func overridesSignature(c *repo.ClassDefinition, ref desc.MethodRef) bool {
	for _, vm := range c.VirtualMethods {
		if vm.Ref.Name == ref.Name && vm.Ref.Proto == ref.Proto {
			return true
		}
	}
	return false
}

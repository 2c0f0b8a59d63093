// Package plan implements the move planner: per interface, decide for each
// declared method whether to move its body into a companion class, keep an
// abstract shim, or emit a dispatch forwarder for a library static method.
// This is the core algorithm of the desugaring engine, grounded directly on
// InterfaceProcessor.java's process(DexProgramClass) / process(DexLibraryClass)
// passes.
package plan

import (
	"github.com/jianglei12138/deshim/internal/common"
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/lens"
	"github.com/jianglei12138/deshim/internal/naming"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/report"
	"github.com/jianglei12138/deshim/internal/resolve"
)

// LivenessOracle answers the two liveness questions the planner needs from
// the host shrinker: whether a member is pinned (reachable from the API
// surface, removal forbidden) and whether a library static method has
// actually been observed invoked from program code (dispatch forwarders are
// only emitted for methods that are, to preserve idempotence under separate
// compilation).
type LivenessOracle interface {
	IsPinned(ref desc.MethodRef) bool
	IsInvoked(ref desc.MethodRef) bool
}

// NopLiveness is the LivenessOracle used when the host shrinker supplies
// none: every method reports as non-pinned (per spec.md §6, "absent ->
// treat every method as non-pinned") and, conservatively, as not invoked --
// a host that tracks no liveness at all would rather under- than
// over-synthesize dispatch forwarders.
type NopLiveness struct{}

func (NopLiveness) IsPinned(desc.MethodRef) bool  { return false }
func (NopLiveness) IsInvoked(desc.MethodRef) bool { return false }

// DispatchEntry pairs a library interface's original static method with its
// dispatch-class forwarder.
type DispatchEntry struct {
	Original desc.MethodRef
	Forward  desc.MethodRef
}

// InterfacePlan is everything the synthesizer and repository need to act on
// one program interface once planning finishes.
type InterfacePlan struct {
	Interface desc.TypeDescriptor

	// CompanionMethods are the method definitions to add to the interface's
	// companion class, already re-signed (receiver prepended where needed).
	CompanionMethods []*desc.MethodDefinition

	// VirtualMethods and DirectMethods are the interface's revised member
	// lists; the synthesizer installs these back onto the interface in place
	// of its originals.
	VirtualMethods []*desc.MethodDefinition
	DirectMethods  []*desc.MethodDefinition

	// Lens accumulates this interface's forward/inverse signature moves.
	Lens *lens.Builder

	// NeedsCompanion is true if CompanionMethods is non-empty; kept as an
	// explicit field so the synthesizer doesn't need to re-derive it.
	NeedsCompanion bool

	// Failed is true if a fatal compile error was reported while planning
	// this interface; the caller must not publish a companion for it.
	Failed bool
}

// LibraryPlan is the dispatch-class plan for one library interface. The
// forwarder bodies themselves are built later, by the synthesizer's
// ForwardBuilder -- Entries carries only the original/forward reference
// pairs the synthesizer needs to build them.
type LibraryPlan struct {
	Interface desc.TypeDescriptor
	Entries   []DispatchEntry
	Lens      *lens.Builder
}

// NeedsDispatch reports whether this plan produced any forwarder at all.
func (p *LibraryPlan) NeedsDispatch() bool { return len(p.Entries) > 0 }

// Planner holds the read-only collaborators the move planner consults.
// A Planner is stateless across interfaces; PlanInterface and
// PlanLibraryInterface may be called concurrently from separate goroutines
// as long as each call targets a different interface (see PlanAll).
type Planner struct {
	Oracle   *resolve.Oracle
	Repo     *repo.Repository
	Liveness LivenessOracle
	Reporter *report.Reporter

	// EmulatedMethods is the set of members already owned by an emulated
	// interface dispatch layer; the planner defers to it entirely and skips
	// these members (spec.md §4.4, "Emulated-dispatch exclusion").
	EmulatedMethods map[desc.MethodRef]bool
}

func (p *Planner) isEmulated(ref desc.MethodRef) bool {
	return p.EmulatedMethods != nil && p.EmulatedMethods[ref]
}

// PlanInterface runs the virtual-method pass and direct-method pass of
// spec.md §4.4 over one program interface.
func (p *Planner) PlanInterface(iface *repo.ClassDefinition) *InterfacePlan {
	plan := &InterfacePlan{Interface: iface.Type, Lens: lens.NewBuilder()}

	for _, m := range iface.VirtualMethods {
		p.planVirtualMethod(iface, m, plan)
		if plan.Failed {
			return plan
		}
	}
	for _, d := range iface.DirectMethods {
		p.planDirectMethod(iface, d, plan)
		if plan.Failed {
			return plan
		}
	}

	plan.NeedsCompanion = len(plan.CompanionMethods) > 0
	return plan
}

func (p *Planner) planVirtualMethod(iface *repo.ClassDefinition, m *desc.MethodDefinition, plan *InterfacePlan) {
	if p.isEmulated(m.Ref) {
		p.Reporter.RecordBenignSkip()
		plan.VirtualMethods = append(plan.VirtualMethods, m)
		return
	}

	if m.IsAbstract() {
		// Already abstract: nothing to move, but an API-preserving bridge
		// still has to run the same keep/drop decision a newly-moved
		// default's shim does (spec.md §4.4's bridge-removability check is
		// unconditional over every virtual method, not just ones the planner
		// itself just moved -- vertical class merging can leave a bridge
		// that never overrides a super-interface implementation, and that
		// one must be kept, but the converse, an API-preserving bridge, must
		// be droppable).
		if p.shouldKeepShim(iface, m) {
			plan.VirtualMethods = append(plan.VirtualMethods, m)
		} else {
			p.Reporter.RecordBenignSkip()
		}
		return
	}

	// Default method: movability check.
	if !canMoveToCompanionClass(p.Oracle, iface, m) {
		p.Reporter.ReportFatal(iface.Type.String(),
			"default method %s cannot be moved to a companion class: its body "+
				"invokes a super-interface method via invoke-super, which has no "+
				"meaning once the body leaves the interface", m.Ref)
		plan.Failed = true
		return
	}

	newRef := naming.AsMovedDefault(m.Ref)
	newBody := m.Body.WithLeadingParameter()
	companionFlags := m.Flags.Without(desc.FlagBridge).PromotedToStatic()
	companion := desc.NewMethodDefinition(newRef, companionFlags, newBody)
	plan.CompanionMethods = append(plan.CompanionMethods, companion)
	plan.Lens.Move(m.Ref, newRef)
	plan.Lens.RecordOrigin(newRef, m.Ref)

	if p.shouldKeepShim(iface, m) {
		shimFlags := m.Flags.AsAbstractShim()
		plan.VirtualMethods = append(plan.VirtualMethods, desc.NewMethodDefinition(m.Ref, shimFlags, nil))
	} else {
		p.Reporter.RecordBenignSkip()
	}
}

// shouldKeepShim implements spec.md §4.4's shim-retention decision: pinned
// members are always kept; a non-bridge default is always kept; a bridge is
// kept only if its removal would change what some reachable super-type
// resolves the signature to.
func (p *Planner) shouldKeepShim(iface *repo.ClassDefinition, m *desc.MethodDefinition) bool {
	if p.Liveness.IsPinned(m.Ref) {
		return true
	}
	if !m.Flags.IsBridge() {
		return true
	}
	return interfaceMethodRemovalChangesApi(p.Oracle, iface, m.Ref)
}

func (p *Planner) planDirectMethod(iface *repo.ClassDefinition, d *desc.MethodDefinition, plan *InterfacePlan) {
	if d.Ref.Name == common.ClassInitializerName {
		plan.DirectMethods = append(plan.DirectMethods, d)
		return
	}

	if p.isEmulated(d.Ref) {
		p.Reporter.RecordBenignSkip()
		plan.DirectMethods = append(plan.DirectMethods, d)
		return
	}

	if d.Flags.IsNative() {
		p.Reporter.ReportFatal(iface.Type.String(),
			"native interface method %s is not yet implemented by this engine", d.Ref)
		plan.Failed = true
		return
	}

	switch {
	case d.Flags.IsStatic():
		newRef := naming.AsMovedStatic(d.Ref)
		flags := d.Flags
		if flags.IsPrivate() {
			flags = flags.PromotedToPublic()
		}
		companion := desc.NewMethodDefinition(newRef, flags, d.Body)
		plan.CompanionMethods = append(plan.CompanionMethods, companion)
		plan.Lens.Move(d.Ref, newRef)

	case d.Flags.IsPrivate():
		newRef := naming.AsMovedPrivate(d.Ref)
		newBody := d.Body.WithLeadingParameter()
		flags := d.Flags.PromotedToPublic().PromotedToStatic()
		companion := desc.NewMethodDefinition(newRef, flags, newBody)
		plan.CompanionMethods = append(plan.CompanionMethods, companion)
		plan.Lens.Move(d.Ref, newRef)

	default:
		p.Reporter.ReportICE("direct method %s on interface %s is neither "+
			"static, private, nor a class initializer", d.Ref, iface.Type)
		plan.Failed = true
	}
}

// canMoveToCompanionClass implements the movability check: m's body must not
// contain an invoke-super whose target is a same-signature method declared
// on one of iface's (transitive) super-interfaces, since such a call has
// meaning only relative to the declaring interface.
func canMoveToCompanionClass(oracle *resolve.Oracle, iface *repo.ClassDefinition, m *desc.MethodDefinition) bool {
	for _, edge := range oracle.SupertypesOf(iface) {
		if !edge.ViaInterface {
			continue
		}
		candidate := m.Ref.WithHolder(edge.Class.Type)
		if m.Body.ContainsSuperInvoke(candidate) {
			return false
		}
	}
	return true
}

// interfaceMethodRemovalChangesApi walks iface's super-types breadth first
// (via the resolution oracle) and reports whether removing the bridge would
// change what some subtype's resolution observes. If a reachable class or
// interface already declares a virtual method with ref's signature,
// resolution falls through to that declaration once the bridge is gone, so
// removal is API-preserving and this returns false; if nothing else supplies
// the signature, removal would change resolution and this returns true,
// meaning the bridge must be kept.
func interfaceMethodRemovalChangesApi(oracle *resolve.Oracle, iface *repo.ClassDefinition, ref desc.MethodRef) bool {
	for _, edge := range oracle.SupertypesOf(iface) {
		if sameSignatureDeclared(edge.Class, ref) {
			return false
		}
	}
	return true
}

// sameSignatureDeclared reports whether c declares (directly, not inherited)
// a virtual method with the same name and proto as ref, irrespective of
// holder -- this is the override/shadow relationship a bridge's removal must
// preserve.
func sameSignatureDeclared(c *repo.ClassDefinition, ref desc.MethodRef) bool {
	for _, vm := range c.VirtualMethods {
		if vm.Ref.Name == ref.Name && vm.Ref.Proto == ref.Proto {
			return true
		}
	}
	return false
}

// PlanLibraryInterface implements the library-interface pass of spec.md
// §4.4: for every public static method of a library interface that is
// actually observed invoked from program code, plan a dispatch forwarder.
// Methods never observed invoked are skipped silently (a benign skip),
// which preserves idempotence across separate compilation.
func (p *Planner) PlanLibraryInterface(iface *repo.ClassDefinition) *LibraryPlan {
	plan := &LibraryPlan{Interface: iface.Type, Lens: lens.NewBuilder()}

	for _, d := range iface.DirectMethods {
		if !d.Flags.IsStatic() || !d.Flags.IsPublic() {
			continue
		}
		if p.isEmulated(d.Ref) {
			p.Reporter.RecordBenignSkip()
			continue
		}
		if !p.Liveness.IsInvoked(d.Ref) {
			p.Reporter.RecordBenignSkip()
			continue
		}

		newRef := naming.AsDispatchForward(d.Ref)
		plan.Entries = append(plan.Entries, DispatchEntry{Original: d.Ref, Forward: newRef})
		plan.Lens.Move(d.Ref, newRef)
	}

	return plan
}

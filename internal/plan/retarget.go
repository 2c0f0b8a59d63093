package plan

import (
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/report"
	"github.com/jianglei12138/deshim/internal/resolve"
)

// RetargetKind discriminates the three redirection shapes spec.md §4.4
// describes for members retargeted into a compatibility library, grounded
// on HumanToMachineRetargetConverter's StaticRetarget /
// NonEmulatedVirtualRetarget / EmulatedVirtualRetarget.
type RetargetKind int

const (
	// StaticRetarget redirects a static member straight to its compat-library
	// replacement, same proto.
	StaticRetarget RetargetKind = iota
	// NonEmulatedVirtualRetarget redirects a final-holder or final virtual
	// member to a static compat-library method with the receiver prepended.
	NonEmulatedVirtualRetarget
	// EmulatedVirtualRetarget redirects a non-final virtual member via a
	// polymorphic triple (interface stub, dispatch class, forwarder), one
	// DispatchCases entry per emulated subtype.
	EmulatedVirtualRetarget
)

func (k RetargetKind) String() string {
	switch k {
	case StaticRetarget:
		return "static"
	case NonEmulatedVirtualRetarget:
		return "non-emulated-virtual"
	case EmulatedVirtualRetarget:
		return "emulated-virtual"
	default:
		return "unknown"
	}
}

// RetargetDescriptor is one planned redirection.
type RetargetDescriptor struct {
	Kind   RetargetKind
	Source desc.MethodRef
	Target desc.MethodRef

	// DispatchCases holds, for EmulatedVirtualRetarget only, the per-subtype
	// forwarding target when the runtime type is more specific than Source's
	// declared holder (mirrors EmulatedDispatchMethodDescriptor).
	DispatchCases map[desc.TypeDescriptor]desc.MethodRef
}

// PlanRetargets runs the retargeting sub-planner of spec.md §4.4 over a set
// of candidate members. members maps each platform member eligible for
// retargeting to the compat-library type it should be redirected into.
// emulatedInterfaces names the library interfaces already owned by the
// emulated-interface-dispatch layer; members belonging to one of those are
// skipped entirely (the emulated layer owns their lowering).
func PlanRetargets(
	oracle *resolve.Oracle,
	r *repo.Repository,
	members map[desc.MethodRef]desc.TypeDescriptor,
	emulatedInterfaces map[desc.TypeDescriptor]bool,
	reporter *report.Reporter,
) []RetargetDescriptor {
	var out []RetargetDescriptor

	for source, compatHolder := range members {
		if isEmulatedInterfaceDispatch(source, emulatedInterfaces) {
			reporter.RecordBenignSkip()
			continue
		}

		holder, ok := r.Get(source.Holder)
		if !ok {
			continue
		}
		def := holder.LookupMethod(source)
		if def == nil {
			continue
		}

		switch {
		case def.Flags.IsStatic():
			target := desc.NewMethodRef(compatHolder, source.Name, source.Proto)
			out = append(out, RetargetDescriptor{Kind: StaticRetarget, Source: source, Target: target})

		case holder.Flags.IsFinal() || def.Flags.IsFinal():
			target := desc.NewMethodRef(compatHolder, source.Name, source.Proto.PrependParam(source.Holder))
			out = append(out, RetargetDescriptor{Kind: NonEmulatedVirtualRetarget, Source: source, Target: target})

		default:
			if !validateNoOverride(oracle, r, source) {
				reporter.ReportFatal(source.Holder.String(),
					"cannot retarget %s: a subtype overrides it with a distinct "+
						"definition, which would silently bypass emulated dispatch", source)
				continue
			}
			target := desc.NewMethodRef(compatHolder, source.Name, source.Proto.PrependParam(source.Holder))
			out = append(out, RetargetDescriptor{
				Kind:          EmulatedVirtualRetarget,
				Source:        source,
				Target:        target,
				DispatchCases: buildDispatchCases(oracle, r, source, target),
			})
		}
	}

	return out
}

// isEmulatedInterfaceDispatch reports whether source's holder is already
// owned by the emulated-interface-dispatch layer, per spec.md §4.4's
// "Emulated-dispatch exclusion".
func isEmulatedInterfaceDispatch(source desc.MethodRef, emulatedInterfaces map[desc.TypeDescriptor]bool) bool {
	return emulatedInterfaces != nil && emulatedInterfaces[source.Holder]
}

// validateNoOverride implements spec.md §4.7's validateNoOverride gate: a
// member is eligible for EmulatedVirtualRetarget only if no subtype in the
// closure overrides it with a distinct definition (an unsupported override
// would silently bypass the emulated dispatch triple).
func validateNoOverride(oracle *resolve.Oracle, r *repo.Repository, source desc.MethodRef) bool {
	for _, sub := range oracle.SubtypesOf(source.Holder) {
		if sameSignatureDeclared(sub, source) {
			return false
		}
	}
	return true
}

// buildDispatchCases computes the per-emulated-subtype dispatch table for an
// EmulatedVirtualRetarget: every subtype of source's holder that the
// repository knows about gets an entry forwarding to target, keyed by its
// own type so the dispatch class's generated switch can select on runtime
// type. validateNoOverride having already passed guarantees none of these
// subtypes supplies a conflicting definition.
func buildDispatchCases(oracle *resolve.Oracle, r *repo.Repository, source, target desc.MethodRef) map[desc.TypeDescriptor]desc.MethodRef {
	cases := map[desc.TypeDescriptor]desc.MethodRef{source.Holder: target}
	for _, sub := range oracle.SubtypesOf(source.Holder) {
		cases[sub.Type] = target
	}
	return cases
}

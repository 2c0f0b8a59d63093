// Package synth implements the synthesizer: materializes companion and
// dispatch classes from the plans produced by package plan and publishes
// them into the class repository, then rewrites each originating
// interface's member lists in place. This is the only phase permitted to
// publish new classes (spec.md §4.2).
package synth

import (
	"fmt"

	"github.com/jianglei12138/deshim/internal/common"
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/naming"
	"github.com/jianglei12138/deshim/internal/plan"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/report"
)

// Synthesizer applies a plan.Result to a repository.
type Synthesizer struct {
	Repo            *repo.Repository
	Reporter        *report.Reporter
	EncodeChecksums bool
	Forward         *ForwardBuilder
}

// New builds a Synthesizer.
func New(r *repo.Repository, reporter *report.Reporter, encodeChecksums bool) *Synthesizer {
	return &Synthesizer{Repo: r, Reporter: reporter, EncodeChecksums: encodeChecksums, Forward: NewForwardBuilder()}
}

func objectSuper() *desc.TypeDescriptor {
	t := desc.Class(common.ObjectClassName)
	return &t
}

// SynthesizeAll applies every interface and library plan in result to the
// repository. The repository must be frozen on entry (the planner's
// invariant) and is unfrozen only for the duration of this pass -- the
// synthesizer is the sole caller ever permitted to do so.
func (s *Synthesizer) SynthesizeAll(result plan.Result) error {
	s.Repo.Unfreeze()
	defer s.Repo.Freeze()

	for _, ip := range result.InterfacePlans {
		if ip == nil || ip.Failed {
			continue
		}
		if err := s.synthesizeInterface(ip); err != nil {
			return err
		}
	}
	for _, lp := range result.LibraryPlans {
		if lp == nil || !lp.NeedsDispatch() {
			continue
		}
		if err := s.synthesizeLibrary(lp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synthesizer) synthesizeInterface(ip *plan.InterfacePlan) error {
	iface, ok := s.Repo.Get(ip.Interface)
	if !ok {
		s.Reporter.ReportICE("synthesizer: planned interface %s is no longer in the repository", ip.Interface)
		return fmt.Errorf("synth: unknown interface %s", ip.Interface)
	}

	if ip.NeedsCompanion {
		if err := s.publishCompanion(iface, ip); err != nil {
			return err
		}
	}

	return s.Repo.Replace(ip.Interface, func(c *repo.ClassDefinition) {
		c.VirtualMethods = ip.VirtualMethods
		c.DirectMethods = ip.DirectMethods
	})
}

func (s *Synthesizer) publishCompanion(iface *repo.ClassDefinition, ip *plan.InterfacePlan) error {
	seen := make(map[desc.MethodRef]bool, len(ip.CompanionMethods))
	for _, m := range ip.CompanionMethods {
		if seen[m.Ref] {
			s.Reporter.ReportFatal(ip.Interface.String(),
				"two moved methods collide on companion signature %s", m.Ref)
			return nil
		}
		seen[m.Ref] = true
	}

	companionType := naming.CompanionOf(ip.Interface)
	companion := repo.NewClass(companionType, objectSuper(), nil, repo.Program)
	companion.Flags = desc.FlagPublic.With(desc.FlagFinal).With(desc.FlagSynthetic)
	companion.SourceFile = iface.SourceFile
	companion.Origin = repo.SynthesizedOrigin("interface desugaring")
	companion.Synthesizing = []desc.TypeDescriptor{ip.Interface}
	companion.DirectMethods = ip.CompanionMethods

	origin := iface
	encode := s.EncodeChecksums
	companion.SetChecksumSupplier(func(*repo.ClassDefinition) uint64 {
		if !encode {
			return common.InvalidChecksumSentinel
		}
		return 7 * origin.Checksum()
	})

	if err := s.Repo.Publish(companion); err != nil {
		s.Reporter.ReportFatal(ip.Interface.String(), "cannot publish companion class %s: %v", companionType, err)
	}
	return nil
}

func (s *Synthesizer) synthesizeLibrary(lp *plan.LibraryPlan) error {
	iface, ok := s.Repo.Get(lp.Interface)
	if !ok {
		s.Reporter.ReportICE("synthesizer: planned library interface %s is no longer in the repository", lp.Interface)
		return fmt.Errorf("synth: unknown library interface %s", lp.Interface)
	}

	dispatchType := naming.DispatchOf(lp.Interface)
	dispatch := repo.NewClass(dispatchType, objectSuper(), nil, repo.Program)
	dispatch.Flags = desc.FlagPublic.With(desc.FlagFinal).With(desc.FlagSynthetic)
	dispatch.SourceFile = iface.SourceFile
	dispatch.Origin = repo.SynthesizedOrigin("interface dispatch")
	dispatch.Synthesizing = []desc.TypeDescriptor{lp.Interface}

	methods := make([]*desc.MethodDefinition, 0, len(lp.Entries))
	for _, entry := range lp.Entries {
		body := s.Forward.StaticForward(entry.Original)
		methods = append(methods, desc.NewMethodDefinition(entry.Forward, desc.FlagPublic.With(desc.FlagStatic), body))
	}
	dispatch.DirectMethods = methods

	// Unlike publishCompanion's gated "7 * origin.checksum" (a single
	// originating interface), a dispatch class's inputs are the library
	// interface plus every calling program class, so it is checksummed from
	// its own type name instead -- unconditionally, not gated by
	// EncodeChecksums.
	dispatch.SetChecksum(common.ChecksumFromName(dispatchType.String()))

	if err := s.Repo.Publish(dispatch); err != nil {
		s.Reporter.ReportFatal(lp.Interface.String(), "cannot publish dispatch class %s: %v", dispatchType, err)
	}
	return nil
}

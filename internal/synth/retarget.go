package synth

import (
	"sort"

	"github.com/jianglei12138/deshim/internal/common"
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/lens"
	"github.com/jianglei12138/deshim/internal/plan"
	"github.com/jianglei12138/deshim/internal/repo"
)

// SynthesizeRetargets materializes the forwarders plan.PlanRetargets decided
// on and returns the lens moves they imply. StaticRetarget and
// NonEmulatedVirtualRetarget redirect straight to an already-existing
// compat-library method, so there is nothing to publish -- only the lens
// move. EmulatedVirtualRetarget's target is the dispatch method itself
// (spec.md §8 scenario 6's "interface stub / dispatch class / forwarder"
// triple collapses the dispatch class and the forwarder into one method at
// Target, since Target is what every call site gets rewritten to), so its
// body has to actually be synthesized and published, grouped by Target's
// holder the way publishCompanion groups moved interface methods by their
// companion class.
func (s *Synthesizer) SynthesizeRetargets(retargets []plan.RetargetDescriptor) (*lens.Builder, error) {
	builder := lens.NewBuilder()
	if len(retargets) == 0 {
		return builder, nil
	}

	type dispatchClass struct {
		origins []desc.TypeDescriptor
		methods []*desc.MethodDefinition
	}
	dispatchClasses := make(map[desc.TypeDescriptor]*dispatchClass)
	var stubs []*desc.MethodDefinition

	for _, rt := range retargets {
		builder.Move(rt.Source, rt.Target)

		if rt.Kind != plan.EmulatedVirtualRetarget {
			continue
		}

		triple := s.Forward.EmulatedTriple(rt)
		builder.RecordOrigin(rt.Target, rt.Source)

		dc := dispatchClasses[rt.Target.Holder]
		if dc == nil {
			dc = &dispatchClass{}
			dispatchClasses[rt.Target.Holder] = dc
		}
		dc.origins = append(dc.origins, rt.Source.Holder)
		dc.methods = append(dc.methods, triple.Dispatch)
		stubs = append(stubs, triple.Stub)
	}

	if len(dispatchClasses) == 0 {
		return builder, nil
	}

	s.Repo.Unfreeze()
	defer s.Repo.Freeze()

	// Replace refuses to mutate a frozen repository, so stubs are installed
	// only once it is unfrozen.
	for _, stub := range stubs {
		s.installStub(stub.Ref, stub)
	}

	holders := make([]desc.TypeDescriptor, 0, len(dispatchClasses))
	for holder := range dispatchClasses {
		holders = append(holders, holder)
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i].String() < holders[j].String() })

	for _, holder := range holders {
		dc := dispatchClasses[holder]
		if err := s.publishRetargetDispatch(holder, dc.origins, dc.methods); err != nil {
			return nil, err
		}
	}

	return builder, nil
}

// installStub swaps the Program-classified holder's virtual method for the
// abstract stub EmulatedTriple produced, leaving a marker that the real
// implementation now lives behind dispatch. Library and classpath holders
// are immutable, so a retarget source declared there -- the common case,
// since retargeting exists precisely to redirect calls into platform
// classes -- only ever gets the call-site rewrite the lens carries.
func (s *Synthesizer) installStub(source desc.MethodRef, stub *desc.MethodDefinition) {
	holder, ok := s.Repo.Get(source.Holder)
	if !ok || holder.Classification != repo.Program {
		return
	}
	_ = s.Repo.Replace(source.Holder, func(c *repo.ClassDefinition) {
		for i, m := range c.VirtualMethods {
			if m.Ref == source {
				c.VirtualMethods[i] = stub
				return
			}
		}
	})
}

func (s *Synthesizer) publishRetargetDispatch(holder desc.TypeDescriptor, origins []desc.TypeDescriptor, methods []*desc.MethodDefinition) error {
	if _, exists := s.Repo.Get(holder); exists {
		return s.Repo.Replace(holder, func(c *repo.ClassDefinition) {
			c.DirectMethods = append(c.DirectMethods, methods...)
		})
	}

	dispatch := repo.NewClass(holder, objectSuper(), nil, repo.Program)
	dispatch.Flags = desc.FlagPublic.With(desc.FlagFinal).With(desc.FlagSynthetic)
	dispatch.Origin = repo.SynthesizedOrigin("emulated virtual retargeting")
	dispatch.Synthesizing = dedupeTypes(origins)
	dispatch.DirectMethods = methods

	// A dispatch class, not a companion: checksummed unconditionally from
	// its own type name, the same "checksumFromType" scheme synthesizeLibrary
	// uses (see its comment), not the gated "7 * origin.checksum" scheme.
	dispatch.SetChecksum(common.ChecksumFromName(holder.String()))

	if err := s.Repo.Publish(dispatch); err != nil {
		s.Reporter.ReportFatal(holder.String(), "cannot publish retarget dispatch class %s: %v", holder, err)
	}
	return nil
}

func dedupeTypes(types []desc.TypeDescriptor) []desc.TypeDescriptor {
	seen := make(map[desc.TypeDescriptor]bool, len(types))
	out := make([]desc.TypeDescriptor, 0, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Package desugar is the top-level driver for the interface desugaring
// engine: it sequences planning, synthesis, and checking over a class
// repository and produces the single lens downstream passes compose over.
// This is the one piece of "driver" surface this module owns; it never
// reads or writes files itself (spec.md §6).
package desugar

import (
	"context"
	"fmt"

	"github.com/jianglei12138/deshim/internal/check"
	"github.com/jianglei12138/deshim/internal/config"
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/lens"
	"github.com/jianglei12138/deshim/internal/plan"
	"github.com/jianglei12138/deshim/internal/repo"
	"github.com/jianglei12138/deshim/internal/report"
	"github.com/jianglei12138/deshim/internal/resolve"
	"github.com/jianglei12138/deshim/internal/synth"
)

// Request bundles every input a host driver supplies for one desugaring run
// (spec.md §6's "Inputs consumed from upstream", plus the retargeting and
// emulated-dispatch inputs the domain-stack expansion adds).
type Request struct {
	Repo     *repo.Repository
	Oracle   *resolve.Oracle
	Options  config.Options
	Liveness plan.LivenessOracle

	// PriorChain is the lens chain produced by earlier passes, or
	// lens.Identity if this is the first lens-producing pass.
	PriorChain *lens.Chain

	// EmulatedMethods and EmulatedInterfaces name members and interfaces
	// already owned by an emulated interface dispatch layer; the planner
	// defers to it and skips them entirely.
	EmulatedMethods    map[desc.MethodRef]bool
	EmulatedInterfaces map[desc.TypeDescriptor]bool

	// RetargetMembers maps platform members eligible for retargeting to the
	// compat-library type they redirect into; empty if this run does not
	// perform retargeting.
	RetargetMembers map[desc.MethodRef]desc.TypeDescriptor
}

// Result is everything a host driver needs after a run: the modified class
// set (already published into Request.Repo), the produced lens chained
// onto the prior one, and diagnostics counts.
type Result struct {
	Chain     *lens.Chain
	Lens      lens.Lens
	Retargets []plan.RetargetDescriptor

	Fatals      []report.FatalError
	BenignSkips int
	Failed      bool
}

// Run sequences planning, synthesis, lens finalization, and checking over
// req.Repo, following the package ordering laid out in spec.md §2's data
// flow. req.Repo must not be frozen on entry; Run freezes it for planning
// and leaves it frozen on return.
func Run(ctx context.Context, req Request) (Result, error) {
	reporter := report.New(req.Options.LogLevel)
	liveness := req.Liveness
	if liveness == nil {
		if len(req.Options.PinnedMembers) > 0 {
			liveness = plan.NewPinnedSet(req.Options.PinnedMembers)
		} else {
			liveness = plan.NopLiveness{}
		}
	}

	req.Repo.Freeze()

	planner := &plan.Planner{
		Oracle:          req.Oracle,
		Repo:            req.Repo,
		Liveness:        liveness,
		Reporter:        reporter,
		EmulatedMethods: req.EmulatedMethods,
	}

	reporter.BeginPhase("planning")
	planResult, err := planner.PlanAll(ctx, req.Options.EffectiveWorkers())
	reporter.EndPhase(err == nil)
	if err != nil {
		return Result{}, fmt.Errorf("desugar: planning failed: %w", err)
	}

	var retargets []plan.RetargetDescriptor
	if len(req.RetargetMembers) > 0 {
		reporter.BeginPhase("retargeting")
		retargets = plan.PlanRetargets(req.Oracle, req.Repo, req.RetargetMembers, req.EmulatedInterfaces, reporter)
		reporter.EndPhase(!reporter.Failed())
	}

	reporter.BeginPhase("synthesis")
	synthesizer := synth.New(req.Repo, reporter, req.Options.EncodeChecksums)
	if err := synthesizer.SynthesizeAll(planResult); err != nil {
		reporter.EndPhase(false)
		return Result{}, fmt.Errorf("desugar: synthesis failed: %w", err)
	}
	retargetLens, err := synthesizer.SynthesizeRetargets(retargets)
	if err != nil {
		reporter.EndPhase(false)
		return Result{}, fmt.Errorf("desugar: retarget synthesis failed: %w", err)
	}
	planResult.Lens.Merge(retargetLens)
	reporter.EndPhase(true)

	finalLens := planResult.Lens.Build()

	reporter.BeginPhase("checking")
	checker := check.New(req.Repo, req.Oracle, liveness, reporter)
	checkOk := checker.CheckAll(planResult.Lens, finalLens)
	if !checker.CheckRetargetOverrides(retargets) {
		checkOk = false
	}
	reporter.EndPhase(checkOk)

	reporter.Summary()

	chain := req.PriorChain
	if finalLens != nil {
		chain = lens.Push(chain, finalLens)
	}

	return Result{
		Chain:       chain,
		Lens:        finalLens,
		Retargets:   retargets,
		Fatals:      reporter.Fatals(),
		BenignSkips: reporter.BenignSkipCount(),
		Failed:      reporter.Failed() || !checkOk,
	}, nil
}

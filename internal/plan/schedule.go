package plan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jianglei12138/deshim/internal/lens"
)

// Result is the merged output of planning every interface in the
// repository: one InterfacePlan per program interface, one LibraryPlan per
// referenced library interface, and the lens builder produced by merging
// every one of their per-interface buffers in sorted descriptor order.
type Result struct {
	InterfacePlans []*InterfacePlan
	LibraryPlans   []*LibraryPlan
	Lens           *lens.Builder
}

// PlanAll runs the planner across every program interface and every library
// interface known to the repository, in parallel, bounded to workers
// goroutines (spec.md §5, "parallel across interfaces"). The repository
// must already be frozen. Results are written into pre-sized slices indexed
// by position, so the merge that follows is deterministic regardless of
// goroutine completion order; libraryInterfaces comes from
// repo.LibraryInterfaces(), which is already sorted by descriptor.
func (p *Planner) PlanAll(ctx context.Context, workers int) (Result, error) {
	programIfaces := p.Repo.ProgramInterfaces()
	libraryIfaces := p.Repo.LibraryInterfaces()

	interfacePlans := make([]*InterfacePlan, len(programIfaces))
	libraryPlans := make([]*LibraryPlan, len(libraryIfaces))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, iface := range programIfaces {
		i, iface := i, iface
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			interfacePlans[i] = p.PlanInterface(iface)
			return nil
		})
	}
	for i, iface := range libraryIfaces {
		i, iface := i, iface
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			libraryPlans[i] = p.PlanLibraryInterface(iface)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	merged := lens.NewBuilder()
	for _, ip := range interfacePlans {
		if ip != nil && !ip.Failed {
			merged.Merge(ip.Lens)
		}
	}
	for _, lp := range libraryPlans {
		if lp != nil {
			merged.Merge(lp.Lens)
		}
	}

	return Result{InterfacePlans: interfacePlans, LibraryPlans: libraryPlans, Lens: merged}, nil
}

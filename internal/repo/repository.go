package repo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jianglei12138/deshim/internal/desc"
)

// Repository is the single owner of class definitions for a run. During
// planning it is frozen and read-only; the synthesizer is the only component
// permitted to publish new classes, which prevents observer/mutation races
// between the parallel per-interface planning goroutines (spec §4.2, §5).
type Repository struct {
	mu      sync.RWMutex
	classes map[desc.TypeDescriptor]*ClassDefinition
	frozen  bool
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{classes: make(map[desc.TypeDescriptor]*ClassDefinition)}
}

// Freeze forbids further publishes until Unfreeze is called. Planning must
// run against a frozen repository.
func (r *Repository) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Unfreeze permits publishes again. The synthesizer calls this before it
// starts merging plans.
func (r *Repository) Unfreeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = false
}

// Get returns the definition and classification for t, if known.
func (r *Repository) Get(t desc.TypeDescriptor) (*ClassDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[t]
	return c, ok
}

// Publish adds a new class to the repository. It fails if the repository is
// frozen or a class with the same type is already present.
func (r *Repository) Publish(c *ClassDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("repo: cannot publish %s while repository is frozen", c.Type)
	}
	if _, exists := r.classes[c.Type]; exists {
		return fmt.Errorf("repo: class %s already published", c.Type)
	}
	r.classes[c.Type] = c
	return nil
}

// Replace atomically mutates the class at t via mutator. Like Publish, it
// fails while the repository is frozen, so the planner's read-only view
// during planning is never invalidated mid-pass.
func (r *Repository) Replace(t desc.TypeDescriptor, mutator func(*ClassDefinition)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("repo: cannot replace %s while repository is frozen", t)
	}
	c, ok := r.classes[t]
	if !ok {
		return fmt.Errorf("repo: no class %s to replace", t)
	}
	mutator(c)
	return nil
}

// ProgramInterfaces returns every program-classified interface, sorted by
// descriptor string so callers get the byte-deterministic ordering the
// synthesizer's merge step relies on (spec §5).
func (r *Repository) ProgramInterfaces() []*ClassDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ClassDefinition
	for _, c := range r.classes {
		if c.Classification == Program && c.IsInterfaceFlag {
			out = append(out, c)
		}
	}
	sortByDescriptor(out)
	return out
}

// LibraryInterfaces returns every library-classified interface.
func (r *Repository) LibraryInterfaces() []*ClassDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ClassDefinition
	for _, c := range r.classes {
		if c.Classification == Library && c.IsInterfaceFlag {
			out = append(out, c)
		}
	}
	sortByDescriptor(out)
	return out
}

// All returns every class known to the repository, sorted by descriptor.
func (r *Repository) All() []*ClassDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ClassDefinition, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sortByDescriptor(out)
	return out
}

func sortByDescriptor(classes []*ClassDefinition) {
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Type.String() < classes[j].Type.String()
	})
}

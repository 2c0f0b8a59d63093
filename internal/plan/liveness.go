package plan

import "github.com/jianglei12138/deshim/internal/desc"

// PinnedSet is the LivenessOracle built from config.Options.PinnedMembers
// when the host driver supplies no richer liveness source: every method
// whose String() form appears in the set reports as pinned, nothing reports
// as invoked. It's the minimal liveness a standalone run can offer without a
// real shrinker behind it.
type PinnedSet struct {
	pinned map[string]bool
}

// NewPinnedSet builds a PinnedSet from descriptor strings as rendered by
// desc.MethodRef.String() (e.g. "I.f() int").
func NewPinnedSet(descriptors []string) PinnedSet {
	pinned := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		pinned[d] = true
	}
	return PinnedSet{pinned: pinned}
}

func (s PinnedSet) IsPinned(ref desc.MethodRef) bool { return s.pinned[ref.String()] }
func (s PinnedSet) IsInvoked(desc.MethodRef) bool    { return false }

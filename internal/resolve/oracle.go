// Package resolve implements the resolution oracle: given a receiver type
// and a method reference, which method definition does the VM actually
// execute. It is read-only over a *repo.Repository and never mutates it.
package resolve

import (
	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/repo"
)

// ResultKind discriminates the shape of a ResolutionResult.
type ResultKind int

const (
	Resolved ResultKind = iota
	NoSuchMethod
	IllegalAccess
	Ambiguous
)

// ResolutionResult is the outcome of a Resolve call. Exactly one of
// Definition / Candidates is meaningful, depending on Kind.
type ResolutionResult struct {
	Kind       ResultKind
	Definition *desc.MethodDefinition
	Holder     desc.TypeDescriptor
	Candidates []*desc.MethodDefinition
}

// SuperEdge is one step of a BFS walk over a class's super-types:
// ViaInterface distinguishes an edge to an implemented interface from an
// edge to the super-class.
type SuperEdge struct {
	Class       *repo.ClassDefinition
	ViaInterface bool
}

// Oracle answers resolution queries against a frozen repository.
type Oracle struct {
	repo *repo.Repository
}

// NewOracle builds an Oracle over r.
func NewOracle(r *repo.Repository) *Oracle {
	return &Oracle{repo: r}
}

// Resolve implements standard static/virtual/interface/super resolution:
// search receiverType, then its super-classes, then its maximally specific
// super-interfaces. Looking up a method on a type the repository does not
// know returns NoSuchMethod -- never fatal for the planner, since it
// signals the method belongs to a class outside the compilation closure.
func (o *Oracle) Resolve(receiverType desc.TypeDescriptor, ref desc.MethodRef) ResolutionResult {
	cls, ok := o.repo.Get(receiverType)
	if !ok {
		return ResolutionResult{Kind: NoSuchMethod}
	}

	// Direct methods (statics, privates, initializers) only resolve against
	// their exact holder; they are never inherited or overridden.
	if cls.Type == ref.Holder {
		if m := cls.LookupDirectMethod(ref); m != nil {
			return ResolutionResult{Kind: Resolved, Definition: m, Holder: cls.Type}
		}
	}

	// Walk the super-class chain first: a method declared anywhere on the
	// class side always shadows any interface default.
	for cur := cls; cur != nil; {
		if m := cur.LookupVirtualMethod(ref.WithHolder(cur.Type)); m != nil {
			if !m.Flags.IsPublic() && !m.Flags.IsProtected() && cur.Type != receiverType {
				return ResolutionResult{Kind: IllegalAccess, Holder: cur.Type}
			}
			return ResolutionResult{Kind: Resolved, Definition: m, Holder: cur.Type}
		}
		if cur.Super == nil {
			break
		}
		next, ok := o.repo.Get(*cur.Super)
		if !ok {
			break
		}
		cur = next
	}

	// No class in the super-class chain supplies the method; search
	// maximally specific super-interfaces. Ambiguity arises when two
	// unrelated super-interfaces each supply a non-abstract (default)
	// definition of the same signature.
	candidates := o.maximallySpecificInterfaceMethods(cls, ref)
	switch len(candidates) {
	case 0:
		return ResolutionResult{Kind: NoSuchMethod}
	case 1:
		return ResolutionResult{Kind: Resolved, Definition: candidates[0].def, Holder: candidates[0].holder}
	default:
		defs := make([]*desc.MethodDefinition, len(candidates))
		for i, c := range candidates {
			defs[i] = c.def
		}
		return ResolutionResult{Kind: Ambiguous, Candidates: defs}
	}
}

type interfaceCandidate struct {
	def    *desc.MethodDefinition
	holder desc.TypeDescriptor
}

// maximallySpecificInterfaceMethods returns the set of default-method
// candidates that are not themselves overridden (shadowed) by another
// candidate further up the walk. A super-interface whose default method is
// overridden by a more-derived super-interface's default of the same
// signature is not a candidate; two candidates remaining at the end with
// neither overriding the other is the ambiguous case.
func (o *Oracle) maximallySpecificInterfaceMethods(start *repo.ClassDefinition, ref desc.MethodRef) []interfaceCandidate {
	var found []interfaceCandidate
	seen := map[desc.TypeDescriptor]bool{}

	var visit func(c *repo.ClassDefinition)
	visit = func(c *repo.ClassDefinition) {
		if c == nil || seen[c.Type] {
			return
		}
		seen[c.Type] = true

		if c.IsInterfaceFlag {
			if m := c.LookupVirtualMethod(ref.WithHolder(c.Type)); m != nil && !m.IsAbstract() {
				found = append(found, interfaceCandidate{def: m, holder: c.Type})
				return // a super-interface of this one cannot be more specific
			}
		}

		for _, super := range c.Interfaces {
			if sc, ok := o.repo.Get(super); ok {
				visit(sc)
			}
		}
		if c.Super != nil {
			if sc, ok := o.repo.Get(*c.Super); ok {
				visit(sc)
			}
		}
	}

	for _, super := range start.Interfaces {
		if sc, ok := o.repo.Get(super); ok {
			visit(sc)
		}
	}
	if start.Super != nil {
		if sc, ok := o.repo.Get(*start.Super); ok {
			visit(sc)
		}
	}

	return o.dedupeMaximallySpecific(found)
}

// dedupeMaximallySpecific removes any candidate that is itself a
// super-interface (directly or transitively) of another candidate: such a
// candidate's method is shadowed by the more-derived interface's own
// override and is not maximally specific. This is the diamond case -- J1,
// J2 both extend J0, J0 declares a default, J1 overrides it -- where
// visit's early return on J1's match means J0 is only ever reached via the
// J2 branch, so holder equality alone can't catch the shadowing; it takes
// an explicit supertype check against every other surviving candidate.
// Two candidates survive only when neither is a supertype of the other,
// i.e. they come from genuinely unrelated interfaces.
func (o *Oracle) dedupeMaximallySpecific(candidates []interfaceCandidate) []interfaceCandidate {
	if len(candidates) <= 1 {
		return candidates
	}

	seenHolder := map[desc.TypeDescriptor]bool{}
	unique := make([]interfaceCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !seenHolder[c.holder] {
			seenHolder[c.holder] = true
			unique = append(unique, c)
		}
	}
	if len(unique) <= 1 {
		return unique
	}

	out := make([]interfaceCandidate, 0, len(unique))
	for _, c := range unique {
		shadowed := false
		for _, other := range unique {
			if other.holder != c.holder && o.IsSubtype(other.holder, c.holder) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, c)
		}
	}
	return out
}

// SupertypesOf returns every super-type of c in BFS order, tagging whether
// each edge was reached via an implemented interface.
func (o *Oracle) SupertypesOf(c *repo.ClassDefinition) []SuperEdge {
	var order []SuperEdge
	visited := map[desc.TypeDescriptor]bool{c.Type: true}
	queue := []*repo.ClassDefinition{c}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.Super != nil {
			if sup, ok := o.repo.Get(*cur.Super); ok && !visited[sup.Type] {
				visited[sup.Type] = true
				order = append(order, SuperEdge{Class: sup, ViaInterface: false})
				queue = append(queue, sup)
			}
		}
		for _, it := range cur.Interfaces {
			if sup, ok := o.repo.Get(it); ok && !visited[sup.Type] {
				visited[sup.Type] = true
				order = append(order, SuperEdge{Class: sup, ViaInterface: true})
				queue = append(queue, sup)
			}
		}
	}

	return order
}

// SubtypesOf returns every class in the repository that transitively extends
// or implements t. It is computed by scanning the whole repository on every
// call (nothing is cached); used only by the retargeting planner and the
// invariant checker's override re-check, neither of which runs on the
// parallel planning path, so an O(n) scan is an acceptable simplification --
// see DESIGN.md.
func (o *Oracle) SubtypesOf(t desc.TypeDescriptor) []*repo.ClassDefinition {
	var out []*repo.ClassDefinition
	for _, c := range o.repo.All() {
		if c.Type == t {
			continue
		}
		for _, edge := range o.SupertypesOf(c) {
			if edge.Class.Type == t {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// IsSubtype reports whether sub is a (possibly indirect) subtype of sup.
func (o *Oracle) IsSubtype(sub, sup desc.TypeDescriptor) bool {
	if sub == sup {
		return true
	}
	c, ok := o.repo.Get(sub)
	if !ok {
		return false
	}
	for _, edge := range o.SupertypesOf(c) {
		if edge.Class.Type == sup {
			return true
		}
	}
	return false
}

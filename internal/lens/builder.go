package lens

import "github.com/jianglei12138/deshim/internal/desc"

// interfaceLens is the concrete Lens produced by this module: the
// Go-shaped analogue of InterfaceProcessorNestedGraphLens. It always maps
// invocation type to Static and keeps two disjoint inverse maps so a moved
// default method's interface shim and its companion implementation can both
// claim authorship of the original signature at different times, toggled by
// ToggleMappingToExtraMethods.
type interfaceLens struct {
	// forward maps an original reference to its new (moved) reference.
	forward map[desc.MethodRef]desc.MethodRef
	// originalMethodSignatures is forward's precomputed inverse: new -> old.
	originalMethodSignatures map[desc.MethodRef]desc.MethodRef
	// extraOriginalMethodSignatures is the interface-desugaring-specific
	// inverse for moved defaults: maps the companion implementation's
	// reference back to the *virtual* method it was copied from, which is a
	// different reference than the abstract shim the forward map already
	// points at for the same logical member.
	extraOriginalMethodSignatures map[desc.MethodRef]desc.MethodRef
	extraForward                  map[desc.MethodRef]desc.MethodRef

	// useExtra selects which of the two inverse maps answers
	// OriginalMethodSignature / NextMethodSignature; toggled by
	// ToggleMappingToExtraMethods.
	useExtra bool
}

// Builder accumulates lens records for one interface (or, across a merge
// step, for the whole planning pass) before the Lens is finalized. Builders
// are per-interface during parallel planning and merged sequentially
// afterward, per the concurrency model in spec §5.
type Builder struct {
	forward      map[desc.MethodRef]desc.MethodRef
	originalSigs map[desc.MethodRef]desc.MethodRef

	extraForward map[desc.MethodRef]desc.MethodRef
	extraSigs    map[desc.MethodRef]desc.MethodRef
}

// NewBuilder creates an empty lens Builder.
func NewBuilder() *Builder {
	return &Builder{
		forward:      make(map[desc.MethodRef]desc.MethodRef),
		originalSigs: make(map[desc.MethodRef]desc.MethodRef),
		extraForward: make(map[desc.MethodRef]desc.MethodRef),
		extraSigs:    make(map[desc.MethodRef]desc.MethodRef),
	}
}

// Move records that old has been relocated to new: every static/private
// interface-method move, and every library static-method dispatch forward,
// goes through Move.
func (b *Builder) Move(old, new desc.MethodRef) {
	if old == new {
		return
	}
	b.forward[old] = new
	b.originalSigs[new] = old
}

// RecordOrigin records the interface-desugaring-specific "extra" inverse
// mapping for a moved default method: method is the companion's
// implementation reference, origin is the virtual method it was copied
// from. This is kept separate from Move's main inverse because the
// interface's abstract shim and the companion's implementation can both
// legitimately claim origin as their original signature at different points
// in the pipeline.
func (b *Builder) RecordOrigin(method, origin desc.MethodRef) {
	if method == origin {
		return
	}
	b.extraForward[origin] = method
	b.extraSigs[method] = origin
}

// Merge absorbs another builder's records into this one. Used to combine
// the per-interface buffers produced by parallel planning into one
// accumulator before Build is called; merging is commutative since every
// interface's records are keyed by that interface's own members, which
// never collide across interfaces.
func (b *Builder) Merge(other *Builder) {
	for k, v := range other.forward {
		b.forward[k] = v
	}
	for k, v := range other.originalSigs {
		b.originalSigs[k] = v
	}
	for k, v := range other.extraForward {
		b.extraForward[k] = v
	}
	for k, v := range other.extraSigs {
		b.extraSigs[k] = v
	}
}

// Empty reports whether this builder recorded no moves at all.
func (b *Builder) Empty() bool {
	return len(b.forward) == 0 && len(b.originalSigs) == 0 && len(b.extraForward) == 0 && len(b.extraSigs) == 0
}

// Move is one forward-remapping record, returned by Moves for invariant
// checking and tests -- the Builder's internal maps stay unexported so
// nothing outside this package can mutate them after the fact.
type Move struct {
	Old, New desc.MethodRef
}

// Moves returns every forward move recorded via Move (not RecordOrigin),
// the domain the "lens is total" invariant (spec.md §3) is checked over.
func (b *Builder) Moves() []Move {
	out := make([]Move, 0, len(b.forward))
	for old, new := range b.forward {
		out = append(out, Move{Old: old, New: new})
	}
	return out
}

// Build finalizes the accumulated records into a Lens. It returns nil if
// nothing was recorded, mirroring the source's contract that an empty
// NestedGraphLens.Builder produces no lens at all (there is nothing for a
// downstream pass to compose over).
func (b *Builder) Build() Lens {
	if b.Empty() {
		return nil
	}
	return &interfaceLens{
		forward:                       b.forward,
		originalMethodSignatures:      b.originalSigs,
		extraOriginalMethodSignatures: b.extraSigs,
		extraForward:                  b.extraForward,
	}
}

func (l *interfaceLens) LookupMethod(ref desc.MethodRef, _ desc.TypeDescriptor, invocation InvocationType) (desc.MethodRef, InvocationType) {
	if newRef, ok := l.forward[ref]; ok {
		return newRef, Static
	}
	return ref, invocation
}

func (l *interfaceLens) OriginalMethodSignature(newRef desc.MethodRef) (desc.MethodRef, bool) {
	primary, extra := l.originalMethodSignatures, l.extraOriginalMethodSignatures
	if l.useExtra {
		primary, extra = extra, primary
	}
	if old, ok := primary[newRef]; ok {
		return old, true
	}
	if old, ok := extra[newRef]; ok {
		return old, true
	}
	return newRef, false
}

func (l *interfaceLens) NextMethodSignature(oldRef desc.MethodRef) (desc.MethodRef, bool) {
	primary, extra := l.forward, l.extraForward
	if l.useExtra {
		primary, extra = extra, primary
	}
	if next, ok := primary[oldRef]; ok {
		return next, true
	}
	if next, ok := extra[oldRef]; ok {
		return next, true
	}
	return oldRef, false
}

// MapInvocationType always reports Static: every member owned by this lens
// was moved to a companion or dispatch class and is now invoked as a static
// call, regardless of its original opcode.
func (l *interfaceLens) MapInvocationType(desc.MethodRef, desc.MethodRef, InvocationType) InvocationType {
	return Static
}

func (l *interfaceLens) ToggleMappingToExtraMethods() {
	l.useExtra = !l.useExtra
}

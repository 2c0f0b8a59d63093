// Package lens implements the bidirectional member-rename table produced by
// interface desugaring. A Lens is threaded through downstream compiler
// passes; call-site rewriting composes lenses left-to-right via Find.
package lens

import "github.com/jianglei12138/deshim/internal/desc"

// InvocationType enumerates the method-invocation kinds a call site can
// carry. Moved members are always reported as Static going forward,
// regardless of their original kind.
type InvocationType int

const (
	Virtual InvocationType = iota
	Direct
	Static
	Interface
	Super
)

// Lens is the read-only interface downstream passes see: a single,
// finalized rename table plus the inverse lookups and invocation-type
// normalization spec.md requires.
type Lens interface {
	// LookupMethod rewrites a call site: given the original reference, the
	// context it's called from, and its original invocation kind, returns
	// the new reference and the new invocation kind.
	LookupMethod(ref desc.MethodRef, context desc.TypeDescriptor, invocation InvocationType) (desc.MethodRef, InvocationType)

	// OriginalMethodSignature maps a new (post-desugaring) reference back to
	// the original one it replaced. ok is false if newRef was not produced by
	// this lens.
	OriginalMethodSignature(newRef desc.MethodRef) (desc.MethodRef, bool)

	// NextMethodSignature maps an original reference forward to its new
	// one. ok is false if oldRef was not moved by this lens.
	NextMethodSignature(oldRef desc.MethodRef) (desc.MethodRef, bool)

	// MapInvocationType reports the invocation kind that should be used at
	// a call site now targeting newRef, given its original target oldRef
	// and its original invocation kind t. Every member this lens owns is
	// invoked as Static.
	MapInvocationType(newRef, oldRef desc.MethodRef, t InvocationType) InvocationType

	// ToggleMappingToExtraMethods swaps which of the two inverse maps
	// (originalMethodSignatures vs. extraOriginalMethodSignatures) is
	// authoritative for OriginalMethodSignature / NextMethodSignature. Used
	// exactly once by a downstream lambda-rewriting pass; see DESIGN.md for
	// the open question this setting resolves.
	ToggleMappingToExtraMethods()
}

// Chain is an immutable, singly linked list of lenses, the ordered
// composition structure lens chains use in place of class-based inheritance.
type Chain struct {
	Lens Lens
	Prev *Chain
}

// Identity is the empty chain: no rewriting performed.
var Identity *Chain = nil

// Push returns a new chain with l applied after the rest of chain.
func Push(chain *Chain, l Lens) *Chain {
	return &Chain{Lens: l, Prev: chain}
}

// Find walks chain and returns the most recently pushed *interfaceLens, or
// nil if the chain contains none. This mirrors
// InterfaceProcessorNestedGraphLens.find's walk over the generic lens chain,
// specialized to the one lens kind this module produces.
func Find(chain *Chain) *interfaceLens {
	for c := chain; c != nil; c = c.Prev {
		if il, ok := c.Lens.(*interfaceLens); ok {
			return il
		}
	}
	return nil
}

package desc

import (
	"strings"
	"sync"
)

// protoData is the interned, canonical representation backing a Proto value.
// It is never mutated after insertion into an Interner, so a *protoData
// pointer is safe to read concurrently without further synchronization.
type protoData struct {
	params []TypeDescriptor
	ret    TypeDescriptor
}

func (p *protoData) key() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, t := range p.params {
		sb.WriteString(t.String())
		sb.WriteByte(';')
	}
	sb.WriteByte(')')
	sb.WriteString(p.ret.String())
	return sb.String()
}

// Interner is the thread-safe, append-only table backing array-type and
// proto interning. Both TypeDescriptor (for arrays) and Proto need
// pointer-stable storage for the structured data they wrap -- a raw slice
// isn't comparable, so without interning neither type could be used directly
// as a map key, which the data model requires ("equality and hashing are on
// descriptors"). Entries are never removed or mutated once inserted, so
// readers never need to hold the lock after a successful lookup.
type Interner struct {
	mu     sync.Mutex
	arrays map[TypeDescriptor]*TypeDescriptor
	protos map[string]*protoData
}

// NewInterner creates an empty, ready-to-use Interner.
func NewInterner() *Interner {
	return &Interner{
		arrays: make(map[TypeDescriptor]*TypeDescriptor),
		protos: make(map[string]*protoData),
	}
}

// ArrayOf returns the canonical descriptor for an array of elem. Repeated
// calls with an equal elem return a TypeDescriptor wrapping the exact same
// *TypeDescriptor pointer, which is what lets arrays of arrays compare equal
// across independently constructed call sites.
func (in *Interner) ArrayOf(elem TypeDescriptor) TypeDescriptor {
	in.mu.Lock()
	defer in.mu.Unlock()

	if ptr, ok := in.arrays[elem]; ok {
		return TypeDescriptor{kind: KindArray, elem: ptr}
	}

	stored := elem
	in.arrays[elem] = &stored
	return TypeDescriptor{kind: KindArray, elem: &stored}
}

// Proto returns the canonical Proto for the given return type and ordered
// parameter types.
func (in *Interner) Proto(ret TypeDescriptor, params ...TypeDescriptor) Proto {
	cp := make([]TypeDescriptor, len(params))
	copy(cp, params)
	data := &protoData{params: cp, ret: ret}
	key := data.key()

	in.mu.Lock()
	defer in.mu.Unlock()

	if existing, ok := in.protos[key]; ok {
		return Proto{data: existing}
	}
	in.protos[key] = data
	return Proto{data: data}
}

// defaultInterner backs the package-level ArrayOf/NewProto convenience
// constructors. A desugaring run processes exactly one program, so a single
// shared interner is the natural scope; callers that want isolation (tests
// running several independent "programs" in one process) can construct their
// own Interner and call its methods directly.
var defaultInterner = NewInterner()

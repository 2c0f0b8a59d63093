package desc

import "strings"

// Proto is the ordered parameter-type list and return type of a method. A
// Proto wraps a pointer into an Interner's canonical table: two Protos built
// from equal parameter/return lists compare equal with ==, and Proto can be
// embedded in MethodRef without losing MethodRef's own comparability.
type Proto struct {
	data *protoData
}

// NewProto builds an interned Proto from its parameter types and return
// type, using the package-level default Interner. See Interner.Proto.
func NewProto(ret TypeDescriptor, params ...TypeDescriptor) Proto {
	return defaultInterner.Proto(ret, params...)
}

// Params returns the ordered parameter types. The returned slice must not be
// mutated by the caller.
func (p Proto) Params() []TypeDescriptor { return p.data.params }

// Return returns the return type.
func (p Proto) Return() TypeDescriptor { return p.data.ret }

// Arity returns the number of parameters.
func (p Proto) Arity() int { return len(p.data.params) }

// PrependParam returns the interned Proto with t inserted as parameter zero,
// the proto-rewriting step every moved interface method undergoes (the
// original receiver becomes the new first parameter).
func (p Proto) PrependParam(t TypeDescriptor) Proto {
	params := make([]TypeDescriptor, 0, len(p.data.params)+1)
	params = append(params, t)
	params = append(params, p.data.params...)
	return defaultInterner.Proto(p.data.ret, params...)
}

// String renders the proto in a Java-like signature form for diagnostics.
func (p Proto) String() string {
	parts := make([]string, len(p.data.params))
	for i, t := range p.data.params {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ") " + p.data.ret.String()
}

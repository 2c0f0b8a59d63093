// Package desc implements the type model of the desugaring engine: type
// descriptors, protos, method and field references, and access flags. All
// entities here are pure, interned data -- nothing in this package owns a
// class body or mutates program state. See package repo for ownership.
package desc

import "strings"

// Kind enumerates the three shapes a TypeDescriptor can take.
type Kind int

const (
	KindPrimitive Kind = iota
	KindClass
	KindArray
)

// PrimKind enumerates the eight JVM primitive types, plus void for method
// return types.
type PrimKind int

const (
	PrimBoolean PrimKind = iota
	PrimByte
	PrimChar
	PrimShort
	PrimInt
	PrimLong
	PrimFloat
	PrimDouble
	PrimVoid
)

func (p PrimKind) String() string {
	switch p {
	case PrimBoolean:
		return "boolean"
	case PrimByte:
		return "byte"
	case PrimChar:
		return "char"
	case PrimShort:
		return "short"
	case PrimInt:
		return "int"
	case PrimLong:
		return "long"
	case PrimFloat:
		return "float"
	case PrimDouble:
		return "double"
	case PrimVoid:
		return "void"
	default:
		return "<unknown-prim>"
	}
}

// TypeDescriptor identifies a class, array, or primitive type. TypeDescriptor
// values are interned for a run: two descriptors naming the same type compare
// equal with ==, so they can be used directly as map keys.
//
// ClassName is only meaningful when Kind == KindClass; it is the fully
// qualified, dot-separated binary name (e.g. "java.util.List"). Elem is only
// meaningful when Kind == KindArray.
type TypeDescriptor struct {
	kind      Kind
	className string
	prim      PrimKind
	elem      *TypeDescriptor
}

// Primitive returns the interned descriptor for a primitive type.
func Primitive(p PrimKind) TypeDescriptor {
	return TypeDescriptor{kind: KindPrimitive, prim: p}
}

// Class returns the interned descriptor for a class or interface type named
// by its fully qualified binary name.
func Class(name string) TypeDescriptor {
	return TypeDescriptor{kind: KindClass, className: name}
}

// ArrayOf returns the interned descriptor for an array of elem, using the
// package-level default Interner. See Interner.ArrayOf.
func ArrayOf(elem TypeDescriptor) TypeDescriptor {
	return defaultInterner.ArrayOf(elem)
}

// Kind reports whether this is a primitive, class, or array descriptor.
func (t TypeDescriptor) Kind() Kind { return t.kind }

// IsClass reports whether t names a class or interface type.
func (t TypeDescriptor) IsClass() bool { return t.kind == KindClass }

// ClassName returns the fully qualified binary name of a class descriptor.
// It panics if t is not a class descriptor; callers must check Kind first.
func (t TypeDescriptor) ClassName() string {
	if t.kind != KindClass {
		panic("desc: ClassName called on non-class TypeDescriptor")
	}
	return t.className
}

// Elem returns the element type of an array descriptor.
func (t TypeDescriptor) Elem() TypeDescriptor {
	if t.kind != KindArray {
		panic("desc: Elem called on non-array TypeDescriptor")
	}
	return *t.elem
}

// Package returns the dot-separated package prefix of a class descriptor, or
// "" if the class is in the unnamed (default) package.
func (t TypeDescriptor) Package() string {
	name := t.ClassName()
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

// SimpleName returns the unqualified, trailing component of a class
// descriptor's name.
func (t TypeDescriptor) SimpleName() string {
	name := t.ClassName()
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// String returns a human-readable representation, used only in diagnostics.
func (t TypeDescriptor) String() string {
	switch t.kind {
	case KindPrimitive:
		return t.prim.String()
	case KindClass:
		return t.className
	case KindArray:
		return t.elem.String() + "[]"
	default:
		return "<invalid-type>"
	}
}

// Equal reports whether two descriptors name the same type. Because
// TypeDescriptor is a small value type with no pointer identity requirement
// beyond equality, plain == is sufficient and this method exists only for
// readability at call sites that compare through an interface boundary.
func (t TypeDescriptor) Equal(other TypeDescriptor) bool {
	return t == other
}

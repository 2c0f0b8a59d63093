// Package naming implements the pure naming-helper functions of the
// desugaring engine: deterministic, bijective transformations from an
// original interface or method to its synthesized companion/dispatch
// counterpart. None of these functions touch the repository or any other
// mutable state, which is what lets two separate compilations of the same
// interface produce byte-identical companion and dispatch class names
// (the determinism contract).
package naming

import (
	"strings"

	"github.com/jianglei12138/deshim/internal/desc"
)

const (
	// companionSuffix names the synthetic class holding moved default,
	// static, and private-instance interface methods.
	companionSuffix = "$$CC"
	// dispatchSuffix names the synthetic class holding forwarders into an
	// immutable library interface's static methods.
	dispatchSuffix = "$$DD"
	// movedDefaultSuffix is appended to a moved default method's name so it
	// cannot collide with a pre-existing static method of the same name and
	// (post-prepend) proto on the companion class.
	movedDefaultSuffix = "$dflt"
)

// CompanionOf returns the deterministic, reversible companion-class type for
// an interface.
func CompanionOf(iface desc.TypeDescriptor) desc.TypeDescriptor {
	return desc.Class(iface.ClassName() + companionSuffix)
}

// InterfaceOfCompanion inverts CompanionOf; it is the basis of the
// naming-level bijection the lens depends on.
func InterfaceOfCompanion(companion desc.TypeDescriptor) (desc.TypeDescriptor, bool) {
	name := companion.ClassName()
	if !strings.HasSuffix(name, companionSuffix) {
		return desc.TypeDescriptor{}, false
	}
	return desc.Class(strings.TrimSuffix(name, companionSuffix)), true
}

// DispatchOf returns the deterministic dispatch-class type for a library
// interface. It uses a distinct namespace from CompanionOf so a program
// interface and a library interface with colliding names (impossible within
// one class-file namespace, but kept distinct defensively) can never alias.
func DispatchOf(iface desc.TypeDescriptor) desc.TypeDescriptor {
	return desc.Class(iface.ClassName() + dispatchSuffix)
}

// InterfaceOfDispatch inverts DispatchOf.
func InterfaceOfDispatch(dispatch desc.TypeDescriptor) (desc.TypeDescriptor, bool) {
	name := dispatch.ClassName()
	if !strings.HasSuffix(name, dispatchSuffix) {
		return desc.TypeDescriptor{}, false
	}
	return desc.Class(strings.TrimSuffix(name, dispatchSuffix)), true
}

// AsMovedDefault rewrites a default method's reference into its companion
// form: the holder becomes the companion class, the original receiver is
// prepended as parameter zero, and the name carries movedDefaultSuffix so it
// cannot collide with an unrelated, pre-existing static companion method of
// the same name and post-prepend proto.
func AsMovedDefault(m desc.MethodRef) desc.MethodRef {
	companion := CompanionOf(m.Holder)
	newProto := m.Proto.PrependParam(m.Holder)
	return desc.NewMethodRef(companion, m.Name+movedDefaultSuffix, newProto)
}

// AsMovedStatic rewrites a static interface method's reference into its
// companion form: only the holder changes, the proto is preserved exactly.
func AsMovedStatic(m desc.MethodRef) desc.MethodRef {
	return m.WithHolder(CompanionOf(m.Holder))
}

// AsMovedPrivate rewrites a private instance interface method's reference
// into its companion form. Semantically this is the same transformation as
// AsMovedDefault (holder becomes companion, receiver becomes parameter
// zero), but private methods keep their original name since, unlike
// defaults, there is no pre-existing abstract shim of the same name left
// behind on the interface to collide with.
func AsMovedPrivate(m desc.MethodRef) desc.MethodRef {
	companion := CompanionOf(m.Holder)
	newProto := m.Proto.PrependParam(m.Holder)
	return desc.NewMethodRef(companion, m.Name, newProto)
}

// AsDispatchForward rewrites a library static interface method's reference
// into its dispatch-class forwarder form: only the holder changes.
func AsDispatchForward(m desc.MethodRef) desc.MethodRef {
	return m.WithHolder(DispatchOf(m.Holder))
}

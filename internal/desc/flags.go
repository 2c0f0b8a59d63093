package desc

// AccessFlags is a bitmask of the Java/Dalvik access and modifier flags the
// planner needs to read and, for program definitions, rewrite. It mirrors
// the class-file flag set closely enough for desugaring purposes without
// pulling in the full verifier-grade flag catalogue.
type AccessFlags uint32

const (
	FlagPublic AccessFlags = 1 << iota
	FlagPrivate
	FlagProtected
	FlagStatic
	FlagFinal
	FlagAbstract
	FlagSynthetic
	FlagBridge
	FlagInterface
	FlagNative
)

func (f AccessFlags) has(bit AccessFlags) bool { return f&bit != 0 }

func (f AccessFlags) IsPublic() bool    { return f.has(FlagPublic) }
func (f AccessFlags) IsPrivate() bool   { return f.has(FlagPrivate) }
func (f AccessFlags) IsProtected() bool { return f.has(FlagProtected) }
func (f AccessFlags) IsStatic() bool    { return f.has(FlagStatic) }
func (f AccessFlags) IsFinal() bool     { return f.has(FlagFinal) }
func (f AccessFlags) IsAbstract() bool  { return f.has(FlagAbstract) }
func (f AccessFlags) IsSynthetic() bool { return f.has(FlagSynthetic) }
func (f AccessFlags) IsBridge() bool    { return f.has(FlagBridge) }
func (f AccessFlags) IsInterface() bool { return f.has(FlagInterface) }
func (f AccessFlags) IsNative() bool    { return f.has(FlagNative) }

// With returns a copy of f with bit set.
func (f AccessFlags) With(bit AccessFlags) AccessFlags { return f | bit }

// Without returns a copy of f with bit cleared.
func (f AccessFlags) Without(bit AccessFlags) AccessFlags { return f &^ bit }

// PromotedToPublic returns a copy of f with FlagPrivate cleared and
// FlagPublic set, the promotion every private interface method undergoes
// when it is moved to a companion class.
func (f AccessFlags) PromotedToPublic() AccessFlags {
	return f.Without(FlagPrivate).With(FlagPublic)
}

// PromotedToStatic returns a copy of f with FlagStatic set.
func (f AccessFlags) PromotedToStatic() AccessFlags {
	return f.With(FlagStatic)
}

// AsAbstractShim returns the flags for an abstract shim left behind on an
// interface after its body is moved to a companion: abstract is set, bridge
// and native are cleared (a shim is never itself a bridge or native), static
// is cleared (abstract methods cannot be static).
func (f AccessFlags) AsAbstractShim() AccessFlags {
	return f.With(FlagAbstract).Without(FlagBridge).Without(FlagNative).Without(FlagStatic)
}

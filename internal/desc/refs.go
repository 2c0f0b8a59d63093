package desc

// MethodRef identifies a method by its holder type, name, and proto. Because
// TypeDescriptor, string, and (now-interned) Proto are all comparable,
// MethodRef is comparable too and can be used directly as a map key, which
// is how the lens and the class repository index moved members.
type MethodRef struct {
	Holder TypeDescriptor
	Name   string
	Proto  Proto
}

// NewMethodRef builds a method reference.
func NewMethodRef(holder TypeDescriptor, name string, proto Proto) MethodRef {
	return MethodRef{Holder: holder, Name: name, Proto: proto}
}

// Arity returns the method's parameter count.
func (m MethodRef) Arity() int { return m.Proto.Arity() }

// WithHolder returns a copy of m re-targeted at a new holder type, the
// operation every naming-helper function performs in one way or another.
func (m MethodRef) WithHolder(holder TypeDescriptor) MethodRef {
	m.Holder = holder
	return m
}

// WithName returns a copy of m with a new method name.
func (m MethodRef) WithName(name string) MethodRef {
	m.Name = name
	return m
}

// WithProto returns a copy of m with a new proto.
func (m MethodRef) WithProto(proto Proto) MethodRef {
	m.Proto = proto
	return m
}

// String renders the method reference for diagnostics.
func (m MethodRef) String() string {
	return m.Holder.String() + "." + m.Name + m.Proto.String()
}

// FieldRef identifies a field by its holder type, name, and type.
type FieldRef struct {
	Holder TypeDescriptor
	Name   string
	Type   TypeDescriptor
}

// NewFieldRef builds a field reference.
func NewFieldRef(holder TypeDescriptor, name string, typ TypeDescriptor) FieldRef {
	return FieldRef{Holder: holder, Name: name, Type: typ}
}

// String renders the field reference for diagnostics.
func (f FieldRef) String() string {
	return f.Holder.String() + "." + f.Name + ":" + f.Type.String()
}

package desc

// MethodDefinition is a method as it actually exists on some class:
// reference, flags, and an optional body. The body is absent for abstract
// and native methods. Method bodies are transferred, never deep-copied, when
// the planner moves them to a companion class.
type MethodDefinition struct {
	Ref   MethodRef
	Flags AccessFlags
	Body  CodeBody
}

// NewMethodDefinition builds a method definition.
func NewMethodDefinition(ref MethodRef, flags AccessFlags, body CodeBody) *MethodDefinition {
	return &MethodDefinition{Ref: ref, Flags: flags, Body: body}
}

// IsAbstract reports whether this definition is flagged abstract or has no
// body.
func (m *MethodDefinition) IsAbstract() bool { return m.Flags.IsAbstract() || m.Body == nil }

// FieldDefinition is a field as it exists on some class.
type FieldDefinition struct {
	Ref           FieldRef
	Flags         AccessFlags
	ConstantValue any
}

// NewFieldDefinition builds a field definition.
func NewFieldDefinition(ref FieldRef, flags AccessFlags, constant any) *FieldDefinition {
	return &FieldDefinition{Ref: ref, Flags: flags, ConstantValue: constant}
}

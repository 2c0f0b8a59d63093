// Package repo implements the class repository: the single owner of class
// definitions for a desugaring run. Every other package holds
// desc.TypeDescriptor references and resolves them through a *Repository on
// demand rather than holding pointers directly, which is what keeps the
// class graph free of cyclic back-edges.
package repo

import "github.com/jianglei12138/deshim/internal/desc"

// Classification tags how a class was obtained and whether it may be
// rewritten.
type Classification int

const (
	// Program classes are rewritable: the planner and synthesizer may move
	// their members and the repository may publish new program classes.
	Program Classification = iota
	// Library classes are immutable and may be absent from the input set
	// entirely (we only see what program code actually references).
	Library
	// Classpath classes are immutable and present only to make resolution
	// possible; like library classes they are never rewritten.
	Classpath
)

func (c Classification) String() string {
	switch c {
	case Program:
		return "program"
	case Library:
		return "library"
	case Classpath:
		return "classpath"
	default:
		return "unknown"
	}
}

// Origin records where a class definition came from, for diagnostics. A
// SynthesizedOrigin marks companion and dispatch classes created by the
// synthesizer.
type Origin struct {
	Description string
	Synthesized bool
}

// SynthesizedOrigin returns an Origin describing a class created by the
// synthesizer for the reason given (e.g. "interface desugaring" or
// "interface dispatch").
func SynthesizedOrigin(reason string) Origin {
	return Origin{Description: reason, Synthesized: true}
}

// ChecksumSupplier computes a class's checksum lazily and deterministically;
// used so companion classes can derive a checksum from their originating
// interface without that interface having to be finalized yet.
type ChecksumSupplier func(c *ClassDefinition) uint64

// ClassDefinition is a class or interface as known to the repository: its
// type, super-type, implemented interfaces, fields, direct and virtual
// methods, origin, and classification. Only Program classes are ever
// mutated, and only by the planner and synthesizer.
type ClassDefinition struct {
	Type       desc.TypeDescriptor
	Super      *desc.TypeDescriptor
	Interfaces []desc.TypeDescriptor

	Fields         []*desc.FieldDefinition
	DirectMethods  []*desc.MethodDefinition
	VirtualMethods []*desc.MethodDefinition

	Origin         Origin
	Classification Classification

	// Flags carries the class-level access flags (public/final/abstract/...).
	// The retargeting planner consults FlagFinal here to decide between a
	// NonEmulatedVirtualRetarget and an EmulatedVirtualRetarget.
	Flags desc.AccessFlags

	SourceFile string

	// IsInterfaceFlag is true for interface declarations. Stored explicitly
	// (rather than inferred) because a class with zero methods of either kind
	// is otherwise indistinguishable from an empty interface.
	IsInterfaceFlag bool

	// Synthesizing lists the class(es) that caused this class to be created,
	// required by the downstream deduplication pass to recognize that two
	// dispatch classes synthesized for the same library interface in two
	// separate compilation units are the same class. Empty for non-synthetic
	// classes.
	Synthesizing []desc.TypeDescriptor

	checksumFn ChecksumSupplier
	checksum   uint64
}

// IsInterface reports whether this class declaration is an interface.
func (c *ClassDefinition) IsInterface() bool { return c.IsInterfaceFlag }

// NewClass builds a program or library/classpath class definition.
func NewClass(t desc.TypeDescriptor, super *desc.TypeDescriptor, interfaces []desc.TypeDescriptor, classification Classification) *ClassDefinition {
	return &ClassDefinition{
		Type:           t,
		Super:          super,
		Interfaces:     interfaces,
		Classification: classification,
	}
}

// NewInterface builds an interface definition with the given
// classification.
func NewInterface(t desc.TypeDescriptor, superInterfaces []desc.TypeDescriptor, classification Classification) *ClassDefinition {
	c := NewClass(t, nil, superInterfaces, classification)
	c.IsInterfaceFlag = true
	return c
}

// Checksum returns this class's checksum, computing it lazily from
// checksumFn on first use if one was supplied (the mechanism companion
// classes use to derive a checksum from their originating interface, per the
// "7 * interface.checksum" scheme; dispatch classes get a fixed value via
// SetChecksum instead).
func (c *ClassDefinition) Checksum() uint64 {
	if c.checksumFn != nil {
		c.checksum = c.checksumFn(c)
		c.checksumFn = nil
	}
	return c.checksum
}

// SetChecksum assigns a fixed checksum value.
func (c *ClassDefinition) SetChecksum(v uint64) { c.checksum = v; c.checksumFn = nil }

// SetChecksumSupplier assigns a lazily computed checksum.
func (c *ClassDefinition) SetChecksumSupplier(fn ChecksumSupplier) { c.checksumFn = fn }

// LookupVirtualMethod returns the virtual method on this class matching ref,
// if any -- used by LookupMethod and by the resolution oracle's super-class
// and super-interface walks.
func (c *ClassDefinition) LookupVirtualMethod(ref desc.MethodRef) *desc.MethodDefinition {
	for _, m := range c.VirtualMethods {
		if m.Ref == ref {
			return m
		}
	}
	return nil
}

// LookupDirectMethod returns the direct method on this class matching ref,
// if any.
func (c *ClassDefinition) LookupDirectMethod(ref desc.MethodRef) *desc.MethodDefinition {
	for _, m := range c.DirectMethods {
		if m.Ref == ref {
			return m
		}
	}
	return nil
}

// LookupMethod returns the direct or virtual method on this class matching
// ref, if any, checking direct methods first (statics/privates never
// overlap with virtuals of the same signature in a well-formed class file).
func (c *ClassDefinition) LookupMethod(ref desc.MethodRef) *desc.MethodDefinition {
	if m := c.LookupDirectMethod(ref); m != nil {
		return m
	}
	return c.LookupVirtualMethod(ref)
}

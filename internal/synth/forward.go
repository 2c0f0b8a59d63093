package synth

import (
	"fmt"
	"sort"

	"github.com/jianglei12138/deshim/internal/desc"
	"github.com/jianglei12138/deshim/internal/plan"
)

// ForwardBuilder emits the method bodies for every forwarding shape the
// synthesizer produces, the Go-shaped analogue of ForwardMethodBuilder.
// Bodies are opaque instruction sequences: the class-file/Dalvik encoder
// that turns these into real bytecode is an external, out-of-scope
// collaborator (spec.md §1), so a forwarder body here only needs to record
// which target it calls and how, not the literal bytes.
type ForwardBuilder struct{}

// NewForwardBuilder constructs a ForwardBuilder. It holds no state; a single
// instance may be shared across an entire synthesis pass.
func NewForwardBuilder() *ForwardBuilder { return &ForwardBuilder{} }

// StaticForward builds a dispatch-class forwarder body: a static→static
// invocation of target with isInterface=true, used for library static
// interface methods that a low-API-level VM cannot invoke directly
// (spec.md §4.6).
func (b *ForwardBuilder) StaticForward(target desc.MethodRef) desc.CodeBody {
	return desc.NewStackMachineBody([]desc.Instruction{
		{Opcode: "invoke-static[interface] " + target.String()},
		{Opcode: "return"},
	})
}

// ReceiverPrependedForward builds a NonEmulatedVirtualRetarget forwarder
// body: a static invocation of target with the original receiver passed as
// the first argument.
func (b *ForwardBuilder) ReceiverPrependedForward(target desc.MethodRef) desc.CodeBody {
	return desc.NewStackMachineBody([]desc.Instruction{
		{Opcode: "invoke-static " + target.String()},
		{Opcode: "return"},
	})
}

// EmulatedForward is the three-piece output of EmulatedTriple: an abstract
// stub left at the original call site's static type, a dispatch method that
// type-switches on the receiver's runtime type, and the set of per-subtype
// forward targets it switches over.
type EmulatedForward struct {
	Stub     *desc.MethodDefinition
	Dispatch *desc.MethodDefinition
	Cases    map[desc.TypeDescriptor]desc.MethodRef
}

// EmulatedTriple builds the interface-stub / dispatch-class / forwarder
// triple for an EmulatedVirtualRetarget (spec.md §4.4, §8 scenario 6): the
// dispatch method's body type-switches on the receiver's runtime type and
// invokes the matching per-subtype target, visiting DispatchCases in
// descriptor-sorted order so two runs over the same subtype set produce a
// byte-identical body.
func (b *ForwardBuilder) EmulatedTriple(d plan.RetargetDescriptor) *EmulatedForward {
	keys := make([]desc.TypeDescriptor, 0, len(d.DispatchCases))
	for t := range d.DispatchCases {
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	instructions := make([]desc.Instruction, 0, len(keys)+1)
	instructions = append(instructions, desc.Instruction{Opcode: "typeswitch " + d.Source.Holder.String()})
	for _, t := range keys {
		target := d.DispatchCases[t]
		instructions = append(instructions, desc.Instruction{
			Opcode: fmt.Sprintf("case %s -> invoke-static %s", t.String(), target.String()),
		})
	}

	dispatch := desc.NewMethodDefinition(d.Target, desc.FlagPublic.With(desc.FlagStatic),
		desc.NewStackMachineBody(instructions))
	stub := desc.NewMethodDefinition(d.Source, desc.FlagPublic.With(desc.FlagAbstract), nil)

	return &EmulatedForward{Stub: stub, Dispatch: dispatch, Cases: d.DispatchCases}
}

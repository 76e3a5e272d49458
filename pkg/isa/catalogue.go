// Package isa defines the URCL instruction set: one Go type per opcode,
// each carrying up to three operand.Operand values and implementing a
// Compile/Execute pair, plus the static catalogue the parser consults to
// validate operand arity and kind.
package isa

import (
	"fmt"
	"strings"

	"github.com/urcl-project/urclvm/pkg/operand"
)

// Source annotates an instruction with where it came from: the name of
// the file/stream it was parsed from and its one-based source line. Line
// is 0 for instructions with no source text (the emulator's synthetic
// no-op returned for an out-of-range program counter), distinguishing
// "no source" from a real first line.
type Source struct {
	Name string
	Line int
}

// Instruction is a compiled, executable opcode with up to three operands.
type Instruction interface {
	// Compile resolves every operand's symbolic references. Called once,
	// in program order, by Emulator.LoadProgram.
	Compile(m operand.Machine) error
	// Execute performs the instruction's effect on m. The emulator advances
	// PC by one afterwards unless Execute halted or returned an error;
	// branches write target-1 to account for that increment.
	Execute(m operand.Machine) error
	// Source returns the originating (file, line) of this instruction.
	Source() Source
	String() string
}

// Kind constrains which Operand variants an opcode slot accepts.
type Kind int

const (
	// KindAny accepts any Operand variant.
	KindAny Kind = iota
	// KindRegister accepts Register or SpecialRegister (the "IRegister"
	// family in the original design).
	KindRegister
	// KindImmediate accepts only Immediate.
	KindImmediate
	// KindPort accepts only Port.
	KindPort
)

func (k Kind) String() string {
	switch k {
	case KindRegister:
		return "Register"
	case KindImmediate:
		return "Immediate"
	case KindPort:
		return "Port"
	default:
		return "Operand"
	}
}

// Matches reports whether o satisfies k.
func (k Kind) Matches(o operand.Operand) bool {
	switch k {
	case KindAny:
		return true
	case KindRegister:
		switch o.(type) {
		case operand.Register, *operand.SpecialRegister:
			return true
		}
		return false
	case KindImmediate:
		_, ok := o.(*operand.Immediate)
		return ok
	case KindPort:
		_, ok := o.(*operand.Port)
		return ok
	default:
		return false
	}
}

// Spec describes one opcode's operand arity and per-slot kind constraints,
// plus the constructor used to build the Instruction once the parser has
// collected and validated the operands.
type Spec struct {
	Name        string
	NumOperands int
	Kinds       [3]Kind
	New         func(a, b, c operand.Operand, src Source) Instruction
}

var catalogue = map[string]Spec{}

func register(spec Spec) {
	if _, exists := catalogue[spec.Name]; exists {
		panic(fmt.Sprintf("isa: duplicate opcode registration %q", spec.Name))
	}
	name, inner := spec.Name, spec.New
	spec.New = func(a, b, c operand.Operand, src Source) Instruction {
		instr := inner(a, b, c, src)
		if named, ok := instr.(interface{ setOpcode(string) }); ok {
			named.setOpcode(name)
		}
		return instr
	}
	catalogue[spec.Name] = spec
}

// Lookup returns the Spec for an uppercased opcode name.
func Lookup(name string) (Spec, bool) {
	spec, ok := catalogue[name]
	return spec, ok
}

// base holds the fields shared by every Instruction: source annotation and
// up to three operands. Concrete opcodes embed it and add an Execute. op is
// filled in by register's wrapping of New, not by the embedding struct.
type base struct {
	src     Source
	a, b, c operand.Operand
	op      string
}

func (b *base) Source() Source { return b.src }

func (b *base) setOpcode(name string) { b.op = name }

func (b *base) compileOperands(m operand.Machine) error {
	for _, o := range [...]operand.Operand{b.a, b.b, b.c} {
		if o == nil {
			continue
		}
		if err := o.Compile(m); err != nil {
			return err
		}
	}
	return nil
}

func (b *base) Compile(m operand.Machine) error {
	return b.compileOperands(m)
}

func (b *base) String() string {
	parts := []string{b.op}
	for _, o := range [...]operand.Operand{b.a, b.b, b.c} {
		if o != nil {
			parts = append(parts, operandString(o))
		}
	}
	return strings.Join(parts, " ")
}

func operandString(o operand.Operand) string {
	if o == nil {
		return ""
	}
	return o.String()
}

package isa

import (
	"errors"

	"github.com/urcl-project/urclvm/pkg/operand"
)

// ErrDivideByZero is the runtime trap raised by DIV/MOD with a zero divisor.
var ErrDivideByZero = errors.New("isa: division by zero")

func init() {
	reg3 := [3]Kind{KindRegister, KindAny, KindAny}
	register(Spec{Name: "ADD", NumOperands: 3, Kinds: reg3, New: newADD})
	register(Spec{Name: "SUB", NumOperands: 3, Kinds: reg3, New: newSUB})
	register(Spec{Name: "MLT", NumOperands: 3, Kinds: reg3, New: newMLT})
	register(Spec{Name: "DIV", NumOperands: 3, Kinds: reg3, New: newDIV})
	register(Spec{Name: "MOD", NumOperands: 3, Kinds: reg3, New: newMOD})
	register(Spec{Name: "INC", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindAny}, New: newINC})
	register(Spec{Name: "DEC", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindAny}, New: newDEC})
	register(Spec{Name: "NEG", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindAny}, New: newNEG})
}

// ADD a,b,c: a := b + c
type ADD struct{ base }

func newADD(a, b, c operand.Operand, src Source) Instruction { return &ADD{base{src: src, a: a, b: b, c: c}} }
func (i *ADD) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m)+i.c.Load(m))
}

// SUB a,b,c: a := b - c
type SUB struct{ base }

func newSUB(a, b, c operand.Operand, src Source) Instruction { return &SUB{base{src: src, a: a, b: b, c: c}} }
func (i *SUB) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m)-i.c.Load(m))
}

// MLT a,b,c: a := b * c
//
// Plain uint64 multiplication wraps modulo 2^64; since every supported
// integer_mask is capped at 63 bits (m.BitMask() <= 2^63-1, see
// Emulator.SetBitMask), and 2^63 divides 2^64, truncating the wrapped
// product to the mask's width yields exactly the same low bits as the
// untruncated product would. No widening multiply is needed.
type MLT struct{ base }

func newMLT(a, b, c operand.Operand, src Source) Instruction { return &MLT{base{src: src, a: a, b: b, c: c}} }
func (i *MLT) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m)*i.c.Load(m))
}

// DIV a,b,c: a := b / c. Division by zero is a runtime trap.
type DIV struct{ base }

func newDIV(a, b, c operand.Operand, src Source) Instruction { return &DIV{base{src: src, a: a, b: b, c: c}} }
func (i *DIV) Execute(m operand.Machine) error {
	c := i.c.Load(m)
	if c == 0 {
		return ErrDivideByZero
	}
	return i.a.Store(m, i.b.Load(m)/c)
}

// MOD a,b,c: a := b % c. Modulo by zero is a runtime trap.
type MOD struct{ base }

func newMOD(a, b, c operand.Operand, src Source) Instruction { return &MOD{base{src: src, a: a, b: b, c: c}} }
func (i *MOD) Execute(m operand.Machine) error {
	c := i.c.Load(m)
	if c == 0 {
		return ErrDivideByZero
	}
	return i.a.Store(m, i.b.Load(m)%c)
}

// INC a,b: a := b + 1
type INC struct{ base }

func newINC(a, b, c operand.Operand, src Source) Instruction { return &INC{base{src: src, a: a, b: b}} }
func (i *INC) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m)+1)
}

// DEC a,b: a := b - 1
type DEC struct{ base }

func newDEC(a, b, c operand.Operand, src Source) Instruction { return &DEC{base{src: src, a: a, b: b}} }
func (i *DEC) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m)-1)
}

// NEG a,b: a := -b
type NEG struct{ base }

func newNEG(a, b, c operand.Operand, src Source) Instruction { return &NEG{base{src: src, a: a, b: b}} }
func (i *NEG) Execute(m operand.Machine) error {
	return i.a.Store(m, -i.b.Load(m))
}

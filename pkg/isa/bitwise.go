package isa

import "github.com/urcl-project/urclvm/pkg/operand"

func init() {
	reg3 := [3]Kind{KindRegister, KindAny, KindAny}
	register(Spec{Name: "OR", NumOperands: 3, Kinds: reg3, New: newOR})
	register(Spec{Name: "AND", NumOperands: 3, Kinds: reg3, New: newAND})
	register(Spec{Name: "XOR", NumOperands: 3, Kinds: reg3, New: newXOR})
	register(Spec{Name: "NOR", NumOperands: 3, Kinds: reg3, New: newNOR})
	register(Spec{Name: "NAND", NumOperands: 3, Kinds: reg3, New: newNAND})
	register(Spec{Name: "XNOR", NumOperands: 3, Kinds: reg3, New: newXNOR})
	register(Spec{Name: "NOT", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindAny}, New: newNOT})
}

// OR a,b,c: a := b | c
type OR struct{ base }

func newOR(a, b, c operand.Operand, src Source) Instruction { return &OR{base{src: src, a: a, b: b, c: c}} }
func (i *OR) Execute(m operand.Machine) error { return i.a.Store(m, i.b.Load(m)|i.c.Load(m)) }

// AND a,b,c: a := b & c
type AND struct{ base }

func newAND(a, b, c operand.Operand, src Source) Instruction { return &AND{base{src: src, a: a, b: b, c: c}} }
func (i *AND) Execute(m operand.Machine) error { return i.a.Store(m, i.b.Load(m)&i.c.Load(m)) }

// XOR a,b,c: a := b ^ c
type XOR struct{ base }

func newXOR(a, b, c operand.Operand, src Source) Instruction { return &XOR{base{src: src, a: a, b: b, c: c}} }
func (i *XOR) Execute(m operand.Machine) error { return i.a.Store(m, i.b.Load(m)^i.c.Load(m)) }

// NOR a,b,c: a := ^(b | c)
type NOR struct{ base }

func newNOR(a, b, c operand.Operand, src Source) Instruction { return &NOR{base{src: src, a: a, b: b, c: c}} }
func (i *NOR) Execute(m operand.Machine) error { return i.a.Store(m, ^(i.b.Load(m) | i.c.Load(m))) }

// NAND a,b,c: a := ^(b & c)
type NAND struct{ base }

func newNAND(a, b, c operand.Operand, src Source) Instruction { return &NAND{base{src: src, a: a, b: b, c: c}} }
func (i *NAND) Execute(m operand.Machine) error { return i.a.Store(m, ^(i.b.Load(m) & i.c.Load(m))) }

// XNOR a,b,c: a := ^(b ^ c)
type XNOR struct{ base }

func newXNOR(a, b, c operand.Operand, src Source) Instruction { return &XNOR{base{src: src, a: a, b: b, c: c}} }
func (i *XNOR) Execute(m operand.Machine) error { return i.a.Store(m, ^(i.b.Load(m) ^ i.c.Load(m))) }

// NOT a,b: a := ^b
type NOT struct{ base }

func newNOT(a, b, c operand.Operand, src Source) Instruction { return &NOT{base{src: src, a: a, b: b}} }
func (i *NOT) Execute(m operand.Machine) error { return i.a.Store(m, ^i.b.Load(m)) }

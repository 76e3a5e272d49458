package isa

import "github.com/urcl-project/urclvm/pkg/operand"

func init() {
	register(Spec{Name: "RSH", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindAny}, New: newRSH})
	register(Spec{Name: "LSH", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindAny}, New: newLSH})
	register(Spec{Name: "BSR", NumOperands: 3, Kinds: [3]Kind{KindRegister, KindAny, KindAny}, New: newBSR})
	register(Spec{Name: "BSL", NumOperands: 3, Kinds: [3]Kind{KindRegister, KindAny, KindAny}, New: newBSL})
}

// RSH a,b: a := b >> 1
type RSH struct{ base }

func newRSH(a, b, c operand.Operand, src Source) Instruction { return &RSH{base{src: src, a: a, b: b}} }
func (i *RSH) Execute(m operand.Machine) error { return i.a.Store(m, i.b.Load(m)>>1) }

// LSH a,b: a := b << 1
type LSH struct{ base }

func newLSH(a, b, c operand.Operand, src Source) Instruction { return &LSH{base{src: src, a: a, b: b}} }
func (i *LSH) Execute(m operand.Machine) error { return i.a.Store(m, i.b.Load(m)<<1) }

// BSR a,b,c: a := b >> c
type BSR struct{ base }

func newBSR(a, b, c operand.Operand, src Source) Instruction { return &BSR{base{src: src, a: a, b: b, c: c}} }
func (i *BSR) Execute(m operand.Machine) error { return i.a.Store(m, i.b.Load(m)>>i.c.Load(m)) }

// BSL a,b,c: a := b << c
type BSL struct{ base }

func newBSL(a, b, c operand.Operand, src Source) Instruction { return &BSL{base{src: src, a: a, b: b, c: c}} }
func (i *BSL) Execute(m operand.Machine) error { return i.a.Store(m, i.b.Load(m)<<i.c.Load(m)) }

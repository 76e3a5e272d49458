package isa

import "github.com/urcl-project/urclvm/pkg/operand"

func init() {
	register(Spec{Name: "IN", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindPort}, New: newIN})
	register(Spec{Name: "OUT", NumOperands: 2, Kinds: [3]Kind{KindPort, KindAny}, New: newOUT})
}

// IN a,b: a := port[b]
type IN struct{ base }

func newIN(a, b, c operand.Operand, src Source) Instruction { return &IN{base{src: src, a: a, b: b}} }
func (i *IN) Execute(m operand.Machine) error               { return i.a.Store(m, i.b.Load(m)) }

// OUT a,b: port[a] := b
type OUT struct{ base }

func newOUT(a, b, c operand.Operand, src Source) Instruction { return &OUT{base{src: src, a: a, b: b}} }
func (i *OUT) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m))
}

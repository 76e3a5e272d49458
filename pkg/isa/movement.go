package isa

import "github.com/urcl-project/urclvm/pkg/operand"

func init() {
	register(Spec{Name: "LOD", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindAny}, New: newLOD})
	register(Spec{Name: "STR", NumOperands: 2, Kinds: [3]Kind{KindAny, KindAny}, New: newSTR})
	register(Spec{Name: "CPY", NumOperands: 2, Kinds: [3]Kind{KindAny, KindAny}, New: newCPY})
	register(Spec{Name: "MOV", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindRegister}, New: newMOV})
	register(Spec{Name: "IMM", NumOperands: 2, Kinds: [3]Kind{KindRegister, KindImmediate}, New: newIMM})
}

// LOD a,b: a := mem[b]
type LOD struct{ base }

func newLOD(a, b, c operand.Operand, src Source) Instruction {
	return &LOD{base{src: src, a: a, b: b}}
}

func (i *LOD) Execute(m operand.Machine) error {
	return i.a.Store(m, m.ReadMemory(i.b.Load(m)))
}

// STR a,b: mem[a] := b
type STR struct{ base }

func newSTR(a, b, c operand.Operand, src Source) Instruction {
	return &STR{base{src: src, a: a, b: b}}
}

func (i *STR) Execute(m operand.Machine) error {
	m.WriteMemory(i.a.Load(m), i.b.Load(m))
	return nil
}

// CPY a,b: mem[a] := mem[b]
type CPY struct{ base }

func newCPY(a, b, c operand.Operand, src Source) Instruction {
	return &CPY{base{src: src, a: a, b: b}}
}

func (i *CPY) Execute(m operand.Machine) error {
	m.WriteMemory(i.a.Load(m), m.ReadMemory(i.b.Load(m)))
	return nil
}

// MOV a,b: a := b
type MOV struct{ base }

func newMOV(a, b, c operand.Operand, src Source) Instruction {
	return &MOV{base{src: src, a: a, b: b}}
}

func (i *MOV) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m))
}

// IMM a,b: a := b (b is an Immediate)
type IMM struct{ base }

func newIMM(a, b, c operand.Operand, src Source) Instruction {
	return &IMM{base{src: src, a: a, b: b}}
}

func (i *IMM) Execute(m operand.Machine) error {
	return i.a.Store(m, i.b.Load(m))
}

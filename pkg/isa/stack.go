package isa

import "github.com/urcl-project/urclvm/pkg/operand"

// stackBase caches the SP special-register id resolved at compile time.
type stackBase struct {
	base
	sp int
}

func (s *stackBase) Compile(m operand.Machine) error {
	if err := s.compileOperands(m); err != nil {
		return err
	}
	s.sp = m.SpecialRegisterID("SP")
	return nil
}

func init() {
	register(Spec{Name: "PSH", NumOperands: 1, Kinds: [3]Kind{KindAny}, New: newPSH})
	register(Spec{Name: "POP", NumOperands: 1, Kinds: [3]Kind{KindAny}, New: newPOP})
}

// PSH a: SP := SP - 1; mem[SP] := a
type PSH struct{ stackBase }

func newPSH(a, b, c operand.Operand, src Source) Instruction {
	return &PSH{stackBase{base: base{src: src, a: a}}}
}
func (i *PSH) Execute(m operand.Machine) error {
	sp := m.ReadSpecialRegister(i.sp) - 1
	m.WriteSpecialRegister(i.sp, sp)
	m.WriteMemory(sp, i.a.Load(m))
	return nil
}

// POP a: a := mem[SP]; SP := SP + 1
type POP struct{ stackBase }

func newPOP(a, b, c operand.Operand, src Source) Instruction {
	return &POP{stackBase{base: base{src: src, a: a}}}
}
func (i *POP) Execute(m operand.Machine) error {
	sp := m.ReadSpecialRegister(i.sp)
	if err := i.a.Store(m, m.ReadMemory(sp)); err != nil {
		return err
	}
	m.WriteSpecialRegister(i.sp, sp+1)
	return nil
}

package isa

import "github.com/urcl-project/urclvm/pkg/operand"

// callBase caches the SP and PC special-register ids resolved at compile
// time, shared by CAL and RET.
type callBase struct {
	base
	sp, pc int
}

func (c *callBase) Compile(m operand.Machine) error {
	if err := c.compileOperands(m); err != nil {
		return err
	}
	c.sp = m.SpecialRegisterID("SP")
	c.pc = m.SpecialRegisterID("PC")
	return nil
}

func init() {
	register(Spec{Name: "CAL", NumOperands: 1, Kinds: [3]Kind{KindAny}, New: newCAL})
	register(Spec{Name: "RET", NumOperands: 0, Kinds: [3]Kind{}, New: newRET})
}

// CAL a: push the return address, jump to a, record the call for the hot
// path call-stack and the call_source_stack the debugger's step-out relies
// on.
type CAL struct{ callBase }

func newCAL(a, b, c operand.Operand, src Source) Instruction {
	return &CAL{callBase{base: base{src: src, a: a}}}
}
func (i *CAL) Execute(m operand.Machine) error {
	sp := m.ReadSpecialRegister(i.sp) - 1
	rawPC := m.ReadSpecialRegister(i.pc)
	m.WriteSpecialRegister(i.sp, sp)
	m.WriteMemory(sp, rawPC)
	m.WriteSpecialRegister(i.pc, i.a.Load(m)-1)
	// IndicateCall must run after PC is rewritten: the emulator attributes
	// the call-stack entry to PC+1 at the time it's called, which only
	// equals the callee's entry address once PC holds target-1.
	m.IndicateCall(rawPC)
	return nil
}

// RET: pop the return address into PC and pop the call-stack bookkeeping.
type RET struct{ callBase }

func newRET(a, b, c operand.Operand, src Source) Instruction {
	return &RET{callBase{base: base{src: src}}}
}
func (i *RET) Execute(m operand.Machine) error {
	sp := m.ReadSpecialRegister(i.sp)
	m.WriteSpecialRegister(i.pc, m.ReadMemory(sp))
	m.WriteSpecialRegister(i.sp, sp+1)
	m.IndicateReturn()
	return nil
}

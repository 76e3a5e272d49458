package isa

import "github.com/urcl-project/urclvm/pkg/operand"

// branchBase caches the PC special-register id resolved at compile time so
// every taken branch writes through the same slot without a name lookup.
type branchBase struct {
	base
	pc int
}

func (b *branchBase) Compile(m operand.Machine) error {
	if err := b.compileOperands(m); err != nil {
		return err
	}
	b.pc = m.SpecialRegisterID("PC")
	return nil
}

// jump sets PC so that, after the emulator's unconditional post-increment,
// execution resumes at target.
func (b *branchBase) jump(m operand.Machine, target uint64) {
	m.WriteSpecialRegister(b.pc, target-1)
}

func init() {
	a2 := [3]Kind{KindAny, KindAny}
	register(Spec{Name: "JMP", NumOperands: 1, Kinds: [3]Kind{KindAny}, New: newJMP})
	register(Spec{Name: "BRZ", NumOperands: 2, Kinds: a2, New: newBRZ})
	register(Spec{Name: "BNZ", NumOperands: 2, Kinds: a2, New: newBNZ})
	register(Spec{Name: "BEV", NumOperands: 2, Kinds: a2, New: newBEV})
	register(Spec{Name: "BOD", NumOperands: 2, Kinds: a2, New: newBOD})
	register(Spec{Name: "BRP", NumOperands: 2, Kinds: a2, New: newBRP})
	register(Spec{Name: "BRN", NumOperands: 2, Kinds: a2, New: newBRN})
	register(Spec{Name: "BRC", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBRC})
	register(Spec{Name: "BNC", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBNC})
	register(Spec{Name: "BRE", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBRE})
	register(Spec{Name: "BNE", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBNE})
	register(Spec{Name: "BRL", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBRL})
	register(Spec{Name: "BRG", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBRG})
	register(Spec{Name: "BLE", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBLE})
	register(Spec{Name: "BGE", NumOperands: 3, Kinds: [3]Kind{KindAny, KindAny, KindAny}, New: newBGE})
}

// JMP a: unconditional jump to a
type JMP struct{ branchBase }

func newJMP(a, b, c operand.Operand, src Source) Instruction {
	return &JMP{branchBase{base: base{src: src, a: a}}}
}
func (i *JMP) Execute(m operand.Machine) error { i.jump(m, i.a.Load(m)); return nil }

// BRZ a,b: jump to a if b == 0
type BRZ struct{ branchBase }

func newBRZ(a, b, c operand.Operand, src Source) Instruction {
	return &BRZ{branchBase{base: base{src: src, a: a, b: b}}}
}
func (i *BRZ) Execute(m operand.Machine) error {
	if i.b.Load(m) == 0 {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BNZ a,b: jump to a if b != 0
type BNZ struct{ branchBase }

func newBNZ(a, b, c operand.Operand, src Source) Instruction {
	return &BNZ{branchBase{base: base{src: src, a: a, b: b}}}
}
func (i *BNZ) Execute(m operand.Machine) error {
	if i.b.Load(m) != 0 {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BEV a,b: jump to a if b is even
type BEV struct{ branchBase }

func newBEV(a, b, c operand.Operand, src Source) Instruction {
	return &BEV{branchBase{base: base{src: src, a: a, b: b}}}
}
func (i *BEV) Execute(m operand.Machine) error {
	if i.b.Load(m)&1 == 0 {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BOD a,b: jump to a if b is odd
type BOD struct{ branchBase }

func newBOD(a, b, c operand.Operand, src Source) Instruction {
	return &BOD{branchBase{base: base{src: src, a: a, b: b}}}
}
func (i *BOD) Execute(m operand.Machine) error {
	if i.b.Load(m)&1 == 1 {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BRP a,b: jump to a if b's sign bit is clear (b is non-negative)
type BRP struct{ branchBase }

func newBRP(a, b, c operand.Operand, src Source) Instruction {
	return &BRP{branchBase{base: base{src: src, a: a, b: b}}}
}
func (i *BRP) Execute(m operand.Machine) error {
	if i.b.Load(m)&m.SignBitMask() == 0 {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BRN a,b: jump to a if b's sign bit is set
type BRN struct{ branchBase }

func newBRN(a, b, c operand.Operand, src Source) Instruction {
	return &BRN{branchBase{base: base{src: src, a: a, b: b}}}
}
func (i *BRN) Execute(m operand.Machine) error {
	if i.b.Load(m)&m.SignBitMask() != 0 {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BRC a,b,c: jump to a if b+c carries out of the configured width
type BRC struct{ branchBase }

func newBRC(a, b, c operand.Operand, src Source) Instruction {
	return &BRC{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BRC) Execute(m operand.Machine) error {
	if carried(m, i.b.Load(m), i.c.Load(m)) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BNC a,b,c: jump to a if b+c does not carry
type BNC struct{ branchBase }

func newBNC(a, b, c operand.Operand, src Source) Instruction {
	return &BNC{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BNC) Execute(m operand.Machine) error {
	if !carried(m, i.b.Load(m), i.c.Load(m)) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// carried reports whether b+c overflows the machine's configured bit width.
func carried(m operand.Machine, b, c uint64) bool {
	mask := m.BitMask()
	return (b&mask)+(c&mask) > mask
}

// BRE a,b,c: jump to a if b == c
type BRE struct{ branchBase }

func newBRE(a, b, c operand.Operand, src Source) Instruction {
	return &BRE{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BRE) Execute(m operand.Machine) error {
	if i.b.Load(m) == i.c.Load(m) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BNE a,b,c: jump to a if b != c
type BNE struct{ branchBase }

func newBNE(a, b, c operand.Operand, src Source) Instruction {
	return &BNE{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BNE) Execute(m operand.Machine) error {
	if i.b.Load(m) != i.c.Load(m) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BRL a,b,c: jump to a if b < c (unsigned)
type BRL struct{ branchBase }

func newBRL(a, b, c operand.Operand, src Source) Instruction {
	return &BRL{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BRL) Execute(m operand.Machine) error {
	if i.b.Load(m) < i.c.Load(m) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BRG a,b,c: jump to a if b > c (unsigned)
type BRG struct{ branchBase }

func newBRG(a, b, c operand.Operand, src Source) Instruction {
	return &BRG{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BRG) Execute(m operand.Machine) error {
	if i.b.Load(m) > i.c.Load(m) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BLE a,b,c: jump to a if b <= c (unsigned)
type BLE struct{ branchBase }

func newBLE(a, b, c operand.Operand, src Source) Instruction {
	return &BLE{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BLE) Execute(m operand.Machine) error {
	if i.b.Load(m) <= i.c.Load(m) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

// BGE a,b,c: jump to a if b >= c (unsigned)
type BGE struct{ branchBase }

func newBGE(a, b, c operand.Operand, src Source) Instruction {
	return &BGE{branchBase{base: base{src: src, a: a, b: b, c: c}}}
}
func (i *BGE) Execute(m operand.Machine) error {
	if i.b.Load(m) >= i.c.Load(m) {
		i.jump(m, i.a.Load(m))
	}
	return nil
}

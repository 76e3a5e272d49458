package isa_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urcl-project/urclvm/pkg/emulator"
	"github.com/urcl-project/urclvm/pkg/isa"
	"github.com/urcl-project/urclvm/pkg/operand"
)

// bitsMul64 gives TestMLTMatchesWideningMultiply an independent, widening
// reference to check MLT's plain uint64 multiply against.
func bitsMul64(a, b uint64) (hi, lo uint64) { return bits.Mul64(a, b) }

func newMachine(t *testing.T, bits uint) *emulator.Emulator {
	t.Helper()
	m, err := emulator.New(bits, nil)
	require.NoError(t, err)
	return m
}

func compileAndRun(t *testing.T, m *emulator.Emulator, program []isa.Instruction) {
	t.Helper()
	require.NoError(t, m.LoadProgram(program))
	for _, instr := range program {
		require.NoError(t, instr.Execute(m))
	}
}

func TestADDStoresMaskedSum(t *testing.T) {
	m := newMachine(t, 8)
	a, b, c := operand.Register{Index: 1}, operand.Register{Index: 2}, operand.Register{Index: 3}
	m.WriteRegister(2, 200)
	m.WriteRegister(3, 100)
	spec, ok := isa.Lookup("ADD")
	require.True(t, ok)
	instr := spec.New(a, b, c, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{instr})
	assert.Equal(t, uint64(44), m.ReadRegister(1)) // (200+100) & 0xFF
}

func TestDIVByZeroTraps(t *testing.T) {
	m := newMachine(t, 32)
	spec, ok := isa.Lookup("DIV")
	require.True(t, ok)
	instr := spec.New(operand.Register{Index: 1}, operand.Register{Index: 2}, operand.Register{Index: 3}, isa.Source{})
	require.NoError(t, instr.Compile(m))
	err := instr.Execute(m)
	assert.ErrorIs(t, err, isa.ErrDivideByZero)
}

func TestMLTMatchesWideningMultiply(t *testing.T) {
	m := newMachine(t, 63)
	a, b := uint64(0x5A5A5A5A5A5A5), uint64(0x123456789AB)
	m.WriteRegister(2, a)
	m.WriteRegister(3, b)
	spec, _ := isa.Lookup("MLT")
	instr := spec.New(operand.Register{Index: 1}, operand.Register{Index: 2}, operand.Register{Index: 3}, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{instr})

	_, lo := bitsMul64(a, b)
	want := lo & m.BitMask()
	assert.Equal(t, want, m.ReadRegister(1))
}

func TestNOTInverts(t *testing.T) {
	m := newMachine(t, 8)
	m.WriteRegister(2, 0x0F)
	spec, _ := isa.Lookup("NOT")
	instr := spec.New(operand.Register{Index: 1}, operand.Register{Index: 2}, nil, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{instr})
	assert.Equal(t, uint64(0xF0), m.ReadRegister(1))
}

func TestBRCDetectsCarry(t *testing.T) {
	m := newMachine(t, 8)
	m.WriteRegister(2, 0xFF)
	m.WriteRegister(3, 1)
	target := &operand.Immediate{Value: 5}
	spec, _ := isa.Lookup("BRC")
	instr := spec.New(target, operand.Register{Index: 2}, operand.Register{Index: 3}, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{instr})
	pc := m.SpecialRegisterID("PC")
	assert.Equal(t, uint64(4), m.ReadSpecialRegister(pc)) // target-1, pre-increment
}

func TestPSHPOPRoundTrip(t *testing.T) {
	m := newMachine(t, 16)
	imm := &operand.Immediate{Value: 0x42}
	pshSpec, _ := isa.Lookup("PSH")
	psh := pshSpec.New(imm, nil, nil, isa.Source{})
	require.NoError(t, psh.Compile(m))
	require.NoError(t, psh.Execute(m))

	popSpec, _ := isa.Lookup("POP")
	pop := popSpec.New(operand.Register{Index: 1}, nil, nil, isa.Source{})
	require.NoError(t, pop.Compile(m))
	require.NoError(t, pop.Execute(m))
	assert.Equal(t, uint64(0x42), m.ReadRegister(1))
}

func TestPSHDecrementsBeforeStoring(t *testing.T) {
	m := newMachine(t, 4)
	sp := m.SpecialRegisterID("SP")
	imm := &operand.Immediate{Value: 7}
	spec, _ := isa.Lookup("PSH")
	instr := spec.New(imm, nil, nil, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{instr})
	assert.Equal(t, uint64(15), m.ReadSpecialRegister(sp)) // 0-1 wrapped at 4 bits
	assert.Equal(t, uint64(7), m.ReadMemory(15))
}

func TestPOPIncrementsAfterLoading(t *testing.T) {
	m := newMachine(t, 4)
	sp := m.SpecialRegisterID("SP")
	m.WriteSpecialRegister(sp, 15)
	m.WriteMemory(15, 9)
	spec, _ := isa.Lookup("POP")
	instr := spec.New(operand.Register{Index: 1}, nil, nil, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{instr})
	assert.Equal(t, uint64(9), m.ReadRegister(1))
	assert.Equal(t, uint64(0), m.ReadSpecialRegister(sp))
}

func TestCALPushesPreJumpPCAndRETRestoresIt(t *testing.T) {
	m := newMachine(t, 16)
	pc, sp := m.SpecialRegisterID("PC"), m.SpecialRegisterID("SP")
	m.WriteSpecialRegister(pc, 3)
	target := &operand.Immediate{Value: 10}
	calSpec, _ := isa.Lookup("CAL")
	cal := calSpec.New(target, nil, nil, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{cal})
	assert.Equal(t, uint64(9), m.ReadSpecialRegister(pc)) // target-1, pre-increment
	assert.Equal(t, uint64(0xFFFF), m.ReadSpecialRegister(sp))
	assert.Equal(t, uint64(3), m.ReadMemory(0xFFFF)) // raw PC at the call site

	retSpec, _ := isa.Lookup("RET")
	ret := retSpec.New(nil, nil, nil, isa.Source{})
	compileAndRun(t, m, []isa.Instruction{ret})
	assert.Equal(t, uint64(3), m.ReadSpecialRegister(pc)) // restored, unadjusted
	assert.Equal(t, uint64(0), m.ReadSpecialRegister(sp))
}

func TestBITSRejectsOutOfRange(t *testing.T) {
	m := newMachine(t, 32)
	spec, _ := isa.Lookup("BITS")
	instr := spec.New(&operand.Immediate{Value: 0}, nil, nil, isa.Source{})
	require.NoError(t, instr.Compile(m))
	err := instr.Execute(m)
	assert.ErrorIs(t, err, isa.ErrInvalidBits)
}

func TestStoreIntoImmediateTraps(t *testing.T) {
	imm := &operand.Immediate{Value: 1}
	err := imm.Store(newMachine(t, 8), 2)
	assert.ErrorIs(t, err, operand.ErrNotStorable)
}

package emulator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urcl-project/urclvm/pkg/emulator"
	"github.com/urcl-project/urclvm/pkg/parser"
)

func build(t *testing.T, source string, bits uint) *emulator.Emulator {
	t.Helper()
	result := parser.Parse(source, "test.urcl")
	require.True(t, result.Ok(), "parse errors: %v", result.Errors)
	m, err := emulator.New(bits, nil)
	require.NoError(t, err)
	require.NoError(t, m.LoadProgram(result.Program))
	for name, addr := range result.Labels {
		m.AddLabel(uint64(addr), name)
	}
	return m
}

func TestExecuteHaltsOnHLT(t *testing.T) {
	m := build(t, "IMM R1 1\nHLT\nIMM R1 2\n", 16)
	m.Execute()
	assert.Equal(t, uint64(1), m.ReadRegister(1))
}

func TestExecuteStopsAtEndOfProgram(t *testing.T) {
	m := build(t, "IMM R1 9\n", 16)
	m.Execute()
	assert.Equal(t, uint64(9), m.ReadRegister(1))
}

func TestRegisterZeroDiscardsWrites(t *testing.T) {
	m := build(t, "IMM R0 5\n", 16)
	m.Execute()
	assert.Equal(t, uint64(0), m.ReadRegister(0))
}

func TestMemoryPagingZeroOnMiss(t *testing.T) {
	m := build(t, "HLT\n", 16)
	assert.Equal(t, uint64(0), m.ReadMemory(0xFFFF))
	m.WriteMemory(0x1FFFF, 7)
	assert.Equal(t, uint64(7), m.ReadMemory(0x1FFFF))
	assert.Equal(t, uint64(0), m.ReadMemory(0x2FFFF))
}

func TestCallReturnRestoresPC(t *testing.T) {
	source := "JMP .main\n.fn\nIMM R1 42\nRET\n.main\nCAL .fn\nHLT\n"
	m := build(t, source, 16)
	m.Execute()
	assert.Equal(t, uint64(42), m.ReadRegister(1))
}

func TestBreakpointEntersDebugState(t *testing.T) {
	source := "IMM R1 1\nIMM R2 2\nHLT\n"
	m := build(t, source, 16)
	m.SetBreakpoint(2)

	opened := false
	m.SetBreakCallback(func(e *emulator.Emulator) {
		opened = true
		e.Resume()
	})
	m.Execute()
	assert.True(t, opened)
	assert.Equal(t, uint64(2), m.ReadRegister(2))
}

func TestHotpathsNormalizeToOne(t *testing.T) {
	source := "IMM R1 1\nIMM R1 1\nIMM R1 1\nHLT\n"
	m := build(t, source, 16)
	m.Execute()
	hotpaths := m.GetHotpaths()
	require.Contains(t, hotpaths, "0")
	var total float64
	for _, frac := range hotpaths["0"] {
		total += frac
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

// TestHotpathsAttributeNestedCalls exercises a two-level call nest (A calls
// B calls C) to pin the iterative call-stack walk in markHotpath against
// the index-underflow bug a naive recursive version is prone to.
func TestHotpathsAttributeNestedCalls(t *testing.T) {
	source := "CAL .B\nHLT\n" +
		".B\nCAL .C\nRET\n" +
		".C\nADD R1 R1 1\nRET\n"
	m := build(t, source, 16)
	m.Execute()
	hotpaths := m.GetHotpaths()
	require.Contains(t, hotpaths, "0")
	require.Contains(t, hotpaths, ".B")
	require.Contains(t, hotpaths, ".C")
	var total float64
	for _, fn := range []string{"0", ".B", ".C"} {
		for _, frac := range hotpaths[fn] {
			total += frac
		}
	}
	assert.InDelta(t, 3.0, total, 1e-9)
}

// TestArithmeticWithTruncation is spec.md §8 scenario 1: ADD on an 8-bit
// machine wraps at 0xFF instead of overflowing into a wider word.
func TestArithmeticWithTruncation(t *testing.T) {
	source := "IMM R1 200\nIMM R2 100\nADD R3 R1 R2\nHLT\n"
	m := build(t, source, 8)
	m.Execute()
	assert.Equal(t, uint64(44), m.ReadRegister(3)) // 300 & 0xFF
}

// TestUnsignedCarryBranch is spec.md §8 scenario 2: BRC takes three operands
// (target, b, c) and fires because 200 > 255-100.
func TestUnsignedCarryBranch(t *testing.T) {
	source := "IMM R1 200\nIMM R2 100\nBRC .O R1 R2\nHLT\n.O\nHLT\n"
	m := build(t, source, 8)
	m.Execute()
	pc := m.GetRegisters()
	found := false
	for _, r := range pc {
		if r.Name == "PC" {
			assert.Equal(t, uint64(4), r.Value) // the .O HLT's own address
			found = true
		}
	}
	assert.True(t, found)
}

// TestCallReturnHotpathAttribution is spec.md §8 scenario 3.
func TestCallReturnHotpathAttribution(t *testing.T) {
	source := "IMM R1 0\nCAL .F\nHLT\n.F\nADD R1 R1 1\nRET\n"
	m := build(t, source, 16)
	m.Execute()
	assert.Equal(t, uint64(1), m.ReadRegister(1))

	hotpaths := m.GetHotpaths()
	require.Contains(t, hotpaths, ".F")
	assert.InDelta(t, 0.5, hotpaths[".F"][5], 1e-9) // ADD's line
	assert.InDelta(t, 0.5, hotpaths[".F"][6], 1e-9) // RET's line
}

// TestStackWraparound is spec.md §8 scenario 5.
func TestStackWraparound(t *testing.T) {
	source := "PSH 1\nPOP R1\nHLT\n"
	m := build(t, source, 4)
	spID := m.SpecialRegisterID("SP")
	assert.Equal(t, uint64(0), m.ReadSpecialRegister(spID))
	m.StepInto() // PSH
	assert.Equal(t, uint64(15), m.ReadSpecialRegister(spID))
	assert.Equal(t, uint64(1), m.ReadMemory(15))
	m.StepInto() // POP
	assert.Equal(t, uint64(0), m.ReadSpecialRegister(spID))
	assert.Equal(t, uint64(1), m.ReadRegister(1))
}

// TestMemoryWrapsNegativeAddresses pins the unsigned-address rule: an
// unmasked below-zero address (a wrapped-around uint64) lands at
// address+integer_mask+1, so a pre-mask SP-1 and the masked SP name the
// same cell.
func TestMemoryWrapsNegativeAddresses(t *testing.T) {
	m, err := emulator.New(4, nil)
	require.NoError(t, err)
	var minusOne uint64 = 0
	minusOne--
	m.WriteMemory(minusOne, 9)
	assert.Equal(t, uint64(9), m.ReadMemory(15))
}

func TestSetBitMaskRejectsOutOfRange(t *testing.T) {
	m, err := emulator.New(32, nil)
	require.NoError(t, err)
	assert.Error(t, m.SetBitMask(0))
	assert.Error(t, m.SetBitMask(64))
	assert.NoError(t, m.SetBitMask(10))
	assert.Equal(t, uint64(0x3FF), m.BitMask())
}

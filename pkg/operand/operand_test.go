package operand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urcl-project/urclvm/pkg/emulator"
	"github.com/urcl-project/urclvm/pkg/operand"
	"github.com/urcl-project/urclvm/pkg/parser"
)

func newMachine(t *testing.T, bits uint) *emulator.Emulator {
	t.Helper()
	m, err := emulator.New(bits, nil)
	require.NoError(t, err)
	return m
}

func TestRegisterZeroDiscardsStore(t *testing.T) {
	m := newMachine(t, 8)
	r := operand.Register{Index: 0}
	require.NoError(t, r.Store(m, 42))
	assert.Equal(t, uint64(0), r.Load(m))
}

func TestRegisterLoadStoreRoundTrip(t *testing.T) {
	m := newMachine(t, 8)
	r := operand.Register{Index: 3}
	require.NoError(t, r.Store(m, 0x1FF))
	assert.Equal(t, uint64(0xFF), r.Load(m)) // masked to 8 bits by the machine
	assert.Equal(t, "R3", r.String())
}

func TestSpecialRegisterResolvesIDAtCompile(t *testing.T) {
	m := newMachine(t, 16)
	sr := &operand.SpecialRegister{Name: "PC"}
	require.NoError(t, sr.Compile(m))
	require.NoError(t, sr.Store(m, 7))
	assert.Equal(t, uint64(7), sr.Load(m))
	assert.Equal(t, uint64(7), m.ReadSpecialRegister(m.SpecialRegisterID("PC")))
}

func TestImmediateIsMaskedAtCompileAndNotStorable(t *testing.T) {
	m := newMachine(t, 8)
	imm := &operand.Immediate{Value: 0x1FF}
	require.NoError(t, imm.Compile(m))
	assert.Equal(t, uint64(0xFF), imm.Load(m))
	assert.ErrorIs(t, imm.Store(m, 1), operand.ErrNotStorable)
	assert.Equal(t, "0xff", imm.String())
}

func TestLabelAddOffsetShiftsAddress(t *testing.T) {
	l := &operand.Label{Name: ".foo", Address: 10}
	l.AddOffset(5)
	assert.Equal(t, int64(15), l.Address)
	assert.Equal(t, ".foo", l.String())
	assert.ErrorIs(t, l.Store(newMachine(t, 8), 1), operand.ErrNotStorable)
}

func TestPortResolvesIDAtCompileAndTrapsUnknownName(t *testing.T) {
	m := newMachine(t, 8)
	m.AddPort("RAND", emulator.NewRandomPort(nil2Source{}))
	p := &operand.Port{Name: "RAND"}
	require.NoError(t, p.Compile(m))
	assert.Equal(t, "%RAND", p.String())

	unknown := &operand.Port{Name: "NOPE"}
	assert.ErrorIs(t, unknown.Compile(m), operand.ErrUnknownPort)
}

// nil2Source is a deterministic math/rand.Source stand-in so this test
// doesn't depend on wall-clock seeding.
type nil2Source struct{}

func (nil2Source) Int63() int64 { return 42 }
func (nil2Source) Seed(int64)   {}

// TestParsePrintParseRoundTrip is spec.md §8's operand display round-trip
// law: parsing an operand, printing it via String, and parsing the printed
// form again yields an equal operand for Register, Immediate, Port and
// SpecialRegister.
func TestParsePrintParseRoundTrip(t *testing.T) {
	source := "MOV R1 R2\nIMM R3 0x2a\nOUT %TEXT R1\nMOV R1 FOO\n"
	first := parser.Parse(source, "a.urcl")
	require.True(t, first.Ok(), "errors: %v", first.Errors)

	var printed string
	for _, instr := range first.Program {
		printed += instr.String() + "\n"
	}
	second := parser.Parse(printed, "b.urcl")
	require.True(t, second.Ok(), "errors: %v", second.Errors)
	require.Len(t, second.Program, len(first.Program))
	for i := range first.Program {
		assert.Equal(t, first.Program[i].String(), second.Program[i].String())
	}
}

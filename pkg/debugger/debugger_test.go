package debugger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/urcl-project/urclvm/pkg/debugger"
	"github.com/urcl-project/urclvm/pkg/emulator"
	"github.com/urcl-project/urclvm/pkg/parser"
)

func build(t *testing.T, source string) *emulator.Emulator {
	t.Helper()
	result := parser.Parse(source, "test.urcl")
	require.True(t, result.Ok(), "parse errors: %v", result.Errors)
	m, err := emulator.New(16, nil)
	require.NoError(t, err)
	require.NoError(t, m.LoadProgram(result.Program))
	return m
}

func recvEvent(t *testing.T, events <-chan debugger.Event) debugger.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debugger event")
		return debugger.Event{}
	}
}

func TestBreakAndResumeReachesHalt(t *testing.T) {
	m := build(t, "IMM R1 1\nIMM R2 2\nHLT\n")
	m.SetBreakpoint(2)

	d := debugger.New(m)
	events := d.Events()
	d.Start()

	open := recvEvent(t, events)
	require.NotNil(t, open.Open)
	require.Equal(t, 2, open.Open.Line)

	d.Resume()
	closed := recvEvent(t, events)
	require.True(t, closed.Closed)

	halted := recvEvent(t, events)
	require.True(t, halted.Halted)
}

func TestStepIntoAdvancesOneInstructionPerBreak(t *testing.T) {
	// Step (unlike Resume) re-arms the break at the very next instruction,
	// so the debugger can keep stepping line by line.
	m := build(t, "IMM R1 1\nIMM R2 2\nHLT\n")
	m.SetBreakpoint(1)

	d := debugger.New(m)
	events := d.Events()
	d.Start()

	first := recvEvent(t, events)
	require.NotNil(t, first.Open)
	require.Equal(t, 1, first.Open.Line)

	d.Step()
	require.True(t, recvEvent(t, events).Closed)
	second := recvEvent(t, events)
	require.NotNil(t, second.Open)
	require.Equal(t, 2, second.Open.Line)

	d.Resume()
	require.True(t, recvEvent(t, events).Closed)

	halted := recvEvent(t, events)
	require.True(t, halted.Halted)
}

func TestConsoleRoundTripsThroughTextPort(t *testing.T) {
	result := parser.Parse("IN R1 %TEXT\nHLT\n", "test.urcl")
	require.True(t, result.Ok(), "parse errors: %v", result.Errors)
	m, err := emulator.New(16, nil)
	require.NoError(t, err)

	d := debugger.New(m)
	m.AddPort("TEXT", debugger.NewTextPort(d))
	require.NoError(t, m.LoadProgram(result.Program))

	events := d.Events()
	d.Start()
	d.SendConsole("A")

	halted := recvEvent(t, events)
	require.True(t, halted.Halted)
	require.Equal(t, uint64('A'), m.ReadRegister(1))
}

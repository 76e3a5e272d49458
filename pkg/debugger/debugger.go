// Package debugger drives an emulator.Emulator from a second goroutine
// over a two-channel protocol: a commands channel carrying the
// controller's requests (step, resume, breakpoint edits, memory queries)
// and a reports channel carrying the machine's break-state snapshots. The
// split mirrors the source format's own multiprocessing.Queue pair,
// translated to the idiomatic Go transport for cross-goroutine handoff.
package debugger

import (
	"github.com/urcl-project/urclvm/pkg/emulator"
)

type commandKind int

const (
	cmdContinue commandKind = iota
	cmdBreakpointSet
	cmdBreakpointRemove
	cmdStepInto
	cmdStepOver
	cmdStepOut
	cmdQueryMemory
)

type command struct {
	kind commandKind
	addr uint64
}

type reportKind int

const (
	reportOpen reportKind = iota
	reportClose
)

type report struct {
	kind   reportKind
	status Status
}

// Status is the machine snapshot sent to the controller every time the
// emulator enters the debug state.
type Status struct {
	Line      int
	Registers []emulator.RegisterSnapshot
	Stack     []emulator.MemoryCell
	CallStack []emulator.CallFrame
	Hotpaths  map[string]map[int]float64
}

// Debugger drives an emulator.Emulator from a goroutine dedicated to
// stepping it, reacting to commands sent from whatever front end (a TUI,
// a test) owns the Debugger value.
type Debugger struct {
	machine *emulator.Emulator

	commands chan command
	reports  chan report

	pendingAdditions []int
	pendingDeletions []int

	debugging bool
	hotpaths  map[string]map[int]float64
	lastLine  int

	// consoleIn/consoleOut back the %TEXT port independently of the debug
	// command/report pair, so console I/O flows whether or not the machine
	// is currently parked at a break.
	consoleIn  chan byte
	consoleOut chan byte

	// memReply carries memory-query responses on their own channel, kept
	// separate from reports: Events() selects on reports continuously (for
	// console output), and sharing one channel would let either ReadMemory
	// or the Events goroutine steal a reply meant for the other.
	memReply chan uint64
}

// New wires a Debugger to machine by installing its break callback, which
// should not be replaced after this call. New does not attach a TEXT port;
// register one with NewTextPort before Start. Start takes ownership of the
// machine's execution.
func New(machine *emulator.Emulator) *Debugger {
	d := &Debugger{
		machine:    machine,
		commands:   make(chan command),
		reports:    make(chan report),
		consoleIn:  make(chan byte, 4096),
		consoleOut: make(chan byte, 4096),
		memReply:   make(chan uint64),
	}
	machine.SetBreakCallback(d.onBreak)
	return d
}

// Start begins executing the machine on a new goroutine. Returns
// immediately; range over Events for break-state transitions. The reports
// channel is closed once the machine halts, which ends the Events loop.
func (d *Debugger) Start() {
	go func() {
		d.machine.Execute()
		close(d.reports)
	}()
}

// onBreak is the emulator's break callback: it runs on the execution
// goroutine, reports the break snapshot, then blocks servicing
// breakpoint-edit and memory-query commands until a step or resume command
// arrives, exactly as the source's _on_break loop does over its Queue
// pair.
func (d *Debugger) onBreak(m *emulator.Emulator) {
	d.reports <- report{kind: reportOpen, status: Status{
		Line:      m.GetLine(),
		Registers: m.GetRegisters(),
		Stack:     m.GetStack(),
		CallStack: m.GetCallStack(),
		Hotpaths:  m.GetHotpaths(),
	}}
	for {
		cmd := <-d.commands
		switch cmd.kind {
		case cmdQueryMemory:
			d.memReply <- m.ReadMemory(cmd.addr)
			continue
		case cmdBreakpointSet:
			m.SetBreakpoint(int(cmd.addr))
			continue
		case cmdBreakpointRemove:
			m.RemoveBreakpoint(int(cmd.addr))
			continue
		}
		switch cmd.kind {
		case cmdStepInto:
			m.StepInto()
		case cmdStepOver:
			m.StepOver()
		case cmdStepOut:
			m.StepOut()
		case cmdContinue:
			m.Resume()
		}
		break
	}
	d.reports <- report{kind: reportClose}
}

// Event is one value delivered by Events for a front end's event loop to
// range over: Open carries the Status of a new break, Closed signals the
// machine resumed running, and Output carries one byte of %TEXT port
// output.
type Event struct {
	Open   *Status
	Closed bool
	Output string
	// Halted is set once the machine stops executing entirely (HLT or PC
	// running off the end of the program), distinct from Closed, which
	// fires every time a break resumes but execution continues.
	Halted bool
}

// Events returns a channel of Event values translated from the internal
// report stream; it closes when the underlying reports channel is
// abandoned (the machine halted without ever reporting again).
func (d *Debugger) Events() <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case r, ok := <-d.reports:
				if !ok {
					out <- Event{Halted: true}
					return
				}
				switch r.kind {
				case reportOpen:
					d.debugging = true
					d.lastLine = r.status.Line
					d.hotpaths = r.status.Hotpaths
					status := r.status
					out <- Event{Open: &status}
				case reportClose:
					d.debugging = false
					out <- Event{Closed: true}
				}
			case b := <-d.consoleOut:
				out <- Event{Output: string(b)}
			}
		}
	}()
	return out
}

// AddBreakpoint stages line for addition, canceling a pending removal of
// the same line instead if one exists.
func (d *Debugger) AddBreakpoint(line int) {
	for i, l := range d.pendingDeletions {
		if l == line {
			d.pendingDeletions = append(d.pendingDeletions[:i], d.pendingDeletions[i+1:]...)
			return
		}
	}
	d.pendingAdditions = append(d.pendingAdditions, line)
}

// RemoveBreakpoint stages line for removal, canceling a pending addition of
// the same line instead if one exists.
func (d *Debugger) RemoveBreakpoint(line int) {
	for i, l := range d.pendingAdditions {
		if l == line {
			d.pendingAdditions = append(d.pendingAdditions[:i], d.pendingAdditions[i+1:]...)
			return
		}
	}
	d.pendingDeletions = append(d.pendingDeletions, line)
}

// FlushBreakpoints sends every staged breakpoint edit to the execution
// goroutine. Only takes effect while the machine is at a break (Debugging
// reports true); call it before issuing the next Step/Resume.
func (d *Debugger) FlushBreakpoints() {
	if !d.debugging {
		return
	}
	for len(d.pendingAdditions) > 0 {
		line := d.pendingAdditions[0]
		d.pendingAdditions = d.pendingAdditions[1:]
		d.commands <- command{kind: cmdBreakpointSet, addr: uint64(line)}
	}
	for len(d.pendingDeletions) > 0 {
		line := d.pendingDeletions[0]
		d.pendingDeletions = d.pendingDeletions[1:]
		d.commands <- command{kind: cmdBreakpointRemove, addr: uint64(line)}
	}
}

// Debugging reports whether the machine is currently parked at a break.
func (d *Debugger) Debugging() bool { return d.debugging }

// CurrentLine returns the source line of the most recent break, or 0 if
// the machine has never paused.
func (d *Debugger) CurrentLine() int { return d.lastLine }

// Hotpaths returns the hot-path counts as of the most recent break.
func (d *Debugger) Hotpaths() map[string]map[int]float64 { return d.hotpaths }

// ReadMemory queries one memory cell while the machine is parked at a
// break. Returns 0 if the machine is not currently debugging.
func (d *Debugger) ReadMemory(address uint64) uint64 {
	if !d.debugging {
		return 0
	}
	d.commands <- command{kind: cmdQueryMemory, addr: address}
	return <-d.memReply
}

// SendConsole feeds text into the %TEXT port's read buffer. Safe to call
// whether or not the machine is currently parked at a break.
func (d *Debugger) SendConsole(text string) {
	for i := 0; i < len(text); i++ {
		d.consoleIn <- text[i]
	}
}

// Resume leaves the debug state and continues normal execution.
func (d *Debugger) Resume() {
	if d.debugging {
		d.commands <- command{kind: cmdContinue}
	}
}

// Step executes exactly one instruction before reporting the next break.
func (d *Debugger) Step() {
	if d.debugging {
		d.commands <- command{kind: cmdStepInto}
	}
}

// StepOver executes the current instruction, running any call it makes to
// completion before the next break.
func (d *Debugger) StepOver() {
	if d.debugging {
		d.commands <- command{kind: cmdStepOver}
	}
}

// StepOut runs until the current function returns before the next break.
func (d *Debugger) StepOut() {
	if d.debugging {
		d.commands <- command{kind: cmdStepOut}
	}
}

package debugger

import "github.com/urcl-project/urclvm/pkg/emulator"

// TextPort is the %TEXT port backing an attached Debugger: IN blocks until
// SendConsole feeds a byte, OUT publishes to Events as an Output event.
// Grounded on the source's DebuggerTextPort, which pulled from and pushed
// to the same command/report queue pair; here it uses the Debugger's
// dedicated console channels instead, so console I/O never contends with
// the debug protocol's step/breakpoint/memory traffic.
type TextPort struct {
	d *Debugger
}

// NewTextPort returns a %TEXT port bound to d. Register it on the
// underlying emulator.Emulator before calling d.Start.
func NewTextPort(d *Debugger) *TextPort { return &TextPort{d: d} }

func (p *TextPort) Read(e *emulator.Emulator) uint64 {
	return uint64(<-p.d.consoleIn)
}

func (p *TextPort) Write(e *emulator.Emulator, value uint64) {
	p.d.consoleOut <- byte(value & 0xFF)
}

var _ emulator.Port = (*TextPort)(nil)

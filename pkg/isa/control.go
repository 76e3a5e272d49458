package isa

import (
	"errors"
	"fmt"

	"github.com/urcl-project/urclvm/pkg/operand"
)

// ErrInvalidBits is the runtime trap raised by BITS with an out-of-range
// operand. The Go port caps the configurable width at 63 bits; see
// Emulator.SetBitMask.
var ErrInvalidBits = errors.New("isa: BITS operand out of range [1,63]")

func init() {
	register(Spec{Name: "NOP", NumOperands: 0, Kinds: [3]Kind{}, New: newNOP})
	register(Spec{Name: "BREAK", NumOperands: 0, Kinds: [3]Kind{}, New: newBREAK})
	register(Spec{Name: "HLT", NumOperands: 0, Kinds: [3]Kind{}, New: newHLT})
	register(Spec{Name: "BITS", NumOperands: 1, Kinds: [3]Kind{KindImmediate}, New: newBITS})
}

// NOP: do nothing for one cycle.
type NOP struct{ base }

func newNOP(a, b, c operand.Operand, src Source) Instruction { return &NOP{base{src: src}} }
func (i *NOP) Execute(m operand.Machine) error               { return nil }

// BREAK: yield control to the attached debugger, if any.
type BREAK struct{ base }

func newBREAK(a, b, c operand.Operand, src Source) Instruction { return &BREAK{base{src: src}} }
func (i *BREAK) Execute(m operand.Machine) error               { m.Debug(); return nil }

// HLT: stop execution.
type HLT struct{ base }

func newHLT(a, b, c operand.Operand, src Source) Instruction { return &HLT{base{src: src}} }
func (i *HLT) Execute(m operand.Machine) error                { m.Halt(); return nil }

// BITS a: reconfigure the machine's integer width to a bits, in [1,63].
type BITS struct{ base }

func newBITS(a, b, c operand.Operand, src Source) Instruction { return &BITS{base{src: src, a: a}} }
func (i *BITS) Execute(m operand.Machine) error {
	n := i.a.Load(m)
	if n < 1 || n > 63 {
		return fmt.Errorf("%w: got %d", ErrInvalidBits, n)
	}
	return m.SetBitMask(uint(n))
}

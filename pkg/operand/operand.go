// Package operand contains the URCL operand model: the uniform
// load/store/compile contract shared by registers, special registers,
// immediates, labels and ports, plus the Machine capability interface
// operands and instructions are executed against.
package operand

import (
	"errors"
	"fmt"
)

// ErrNotStorable indicates an attempt to store into an operand that does
// not support storing (Immediate, Label).
var ErrNotStorable = errors.New("operand: does not support store")

// ErrUnknownPort indicates a Port operand referencing an undeclared port.
var ErrUnknownPort = errors.New("operand: unknown port")

// Machine is the capability interface operands and instructions execute
// against. The emulator package provides the only implementation; this
// package depends on nothing but the interface, mirroring the teacher's
// IMachine/Operand split translated from inheritance to composition.
type Machine interface {
	ReadRegister(index int) uint64
	WriteRegister(index int, value uint64)

	SpecialRegisterID(name string) int
	ReadSpecialRegister(id int) uint64
	WriteSpecialRegister(id int, value uint64)

	ReadMemory(address uint64) uint64
	WriteMemory(address uint64, value uint64)

	PortID(name string) (int, error)
	ReadPort(id int) uint64
	WritePort(id int, value uint64)

	SignBitMask() uint64
	BitMask() uint64
	SetBitMask(bits uint) error

	Halt()
	Debug()
	IndicateCall(returnAddress uint64)
	IndicateReturn()
}

// Operand is one of Register, SpecialRegister, Immediate, Label or Port.
type Operand interface {
	// Load reads the operand's current value.
	Load(m Machine) uint64
	// Store writes value into the operand. Returns ErrNotStorable for
	// Immediate and Label.
	Store(m Machine, value uint64) error
	// Compile resolves symbolic references (special register ids, port
	// ids) against m. Called exactly once, during program load.
	Compile(m Machine) error
	// AddOffset shifts a Label's address; a no-op for every other variant.
	AddOffset(offset int64)
	String() string
}

// Register is a general-purpose register reference. Register 0 is the
// permanent zero register; the emulator discards writes to it.
type Register struct {
	Index int
}

func (r Register) Load(m Machine) uint64                { return m.ReadRegister(r.Index) }
func (r Register) Store(m Machine, value uint64) error   { m.WriteRegister(r.Index, value); return nil }
func (r Register) Compile(m Machine) error               { return nil }
func (r Register) AddOffset(offset int64)                {}
func (r Register) String() string                        { return fmt.Sprintf("R%d", r.Index) }

// SpecialRegister is a named scalar such as PC or SP, or any uppercase
// identifier introduced by source text. Its slot id is resolved at compile
// time and cached.
type SpecialRegister struct {
	Name string
	id   int
}

func (s *SpecialRegister) Compile(m Machine) error {
	s.id = m.SpecialRegisterID(s.Name)
	return nil
}
func (s *SpecialRegister) Load(m Machine) uint64              { return m.ReadSpecialRegister(s.id) }
func (s *SpecialRegister) Store(m Machine, value uint64) error { m.WriteSpecialRegister(s.id, value); return nil }
func (s *SpecialRegister) AddOffset(offset int64)             {}
func (s *SpecialRegister) String() string                    { return s.Name }

// Immediate is a literal value fixed at parse time and masked at compile
// time against the machine's bit mask.
type Immediate struct {
	Value uint64
}

func (i *Immediate) Compile(m Machine) error {
	i.Value &= m.BitMask()
	return nil
}
func (i *Immediate) Load(m Machine) uint64 { return i.Value }
func (i *Immediate) Store(m Machine, value uint64) error {
	return fmt.Errorf("%w: immediate", ErrNotStorable)
}
func (i *Immediate) AddOffset(offset int64) {}
func (i *Immediate) String() string         { return fmt.Sprintf("0x%x", i.Value) }

// Label is a named program address, possibly still unresolved (Address
// negative) at parse time and patched in once the label is defined.
type Label struct {
	Name    string
	Address int64
}

func (l *Label) Compile(m Machine) error { return nil }
func (l *Label) Load(m Machine) uint64   { return uint64(l.Address) }
func (l *Label) Store(m Machine, value uint64) error {
	return fmt.Errorf("%w: label", ErrNotStorable)
}
func (l *Label) AddOffset(offset int64) { l.Address += offset }
func (l *Label) String() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("0x%x", l.Address)
}

// Port is a name-addressed I/O channel. Its id is resolved at compile time;
// an unknown port name is a compile error (spec.md §7).
type Port struct {
	Name string
	id   int
}

func (p *Port) Compile(m Machine) error {
	id, err := m.PortID(p.Name)
	if err != nil {
		return err
	}
	p.id = id
	return nil
}
func (p *Port) Load(m Machine) uint64              { return m.ReadPort(p.id) }
func (p *Port) Store(m Machine, value uint64) error { m.WritePort(p.id, value); return nil }
func (p *Port) AddOffset(offset int64)              {}
func (p *Port) String() string                      { return "%" + p.Name }

var (
	_ Operand = Register{}
	_ Operand = &SpecialRegister{}
	_ Operand = &Immediate{}
	_ Operand = &Label{}
	_ Operand = &Port{}
)

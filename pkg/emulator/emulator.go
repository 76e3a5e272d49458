// Package emulator implements the URCL machine: register file, paged
// memory, port table, call-stack bookkeeping, hot-path profiling, and the
// breakpoint/go-point/step machinery the debugger package drives. It is the
// only implementation of operand.Machine.
package emulator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/urcl-project/urclvm/pkg/isa"
	"github.com/urcl-project/urclvm/pkg/operand"
)

// Port is a name-addressed I/O device. Register with AddPort.
type Port interface {
	Read(e *Emulator) uint64
	Write(e *Emulator, value uint64)
}

// DefaultMemoryBlockSize is the fixed page size, in words, every memory
// block is allocated at.
const DefaultMemoryBlockSize = 0x10000

// nop is the instruction returned for any out-of-range program counter, so
// GetCurrentInstruction never returns nil.
type nop struct{}

func (nop) Compile(operand.Machine) error    { return nil }
func (nop) Execute(operand.Machine) error    { return nil }
func (nop) Source() isa.Source               { return isa.Source{} }
func (nop) String() string                   { return "NOP" }

// Emulator is the concrete operand.Machine: a register/memory/port machine
// plus the debug-controller surface (breakpoints, go-points, step modes,
// hot-path profiling) the debugger package drives over a channel protocol.
type Emulator struct {
	generalRegisters    []uint64
	specialRegisters    []uint64
	specialRegisterMap  map[string]int

	integerMask uint64
	integerBits uint

	memoryBlockOffsetMask uint64
	memoryBlockOffsetBits uint
	memoryBlocks          map[uint64][]uint64

	ports   []Port
	portMap map[string]int

	labels map[uint64]string
	rom    []isa.Instruction

	callStack       []uint64
	callSourceStack []uint64
	hotpaths        map[string]map[int]float64

	executing bool
	debugging bool

	// awaitingExecution is set when Step() arms debugging because of a
	// breakpoint or go-point match, i.e. before the instruction at that
	// address has run. Resume, in that case, must execute it before
	// going back to free-running, or the very next Step would re-arm on
	// the same unmoved PC. A BREAK opcode armed debugging only after
	// already running, so it leaves this false and Resume needs no
	// extra step.
	awaitingExecution bool

	breakCallback func(*Emulator)

	breakpoints []int
	gopoints    []uint64

	pc int

	log *logrus.Entry
}

// New builds an Emulator configured for the given initial integer width, in
// [1,63]. Use internal/config to source bits from a session file.
func New(bits uint, log *logrus.Entry) (*Emulator, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	e := &Emulator{
		specialRegisterMap: map[string]int{},
		memoryBlocks:       map[uint64][]uint64{},
		portMap:            map[string]int{},
		labels:             map[uint64]string{},
		hotpaths:           map[string]map[int]float64{},
		log:                log,
	}
	e.memoryBlockOffsetMask = DefaultMemoryBlockSize - 1
	e.memoryBlockOffsetBits = bitCount(e.memoryBlockOffsetMask)
	if err := e.SetBitMask(bits); err != nil {
		return nil, err
	}
	e.pc = e.SpecialRegisterID("PC")
	e.SpecialRegisterID("SP")
	return e, nil
}

func bitCount(value uint64) uint {
	var n uint
	for value > 0 {
		n++
		value >>= 1
	}
	return n
}

// SetBitMask reconfigures the integer width. Bits must be in [1,63]: zero
// mirrors the source format's own rejection of a zero mask, and 63 is this
// port's cap (see DESIGN.md) to keep masked arithmetic in plain uint64.
func (e *Emulator) SetBitMask(n uint) error {
	if n < 1 || n > 63 {
		return fmt.Errorf("emulator: integer width must be in [1,63], got %d", n)
	}
	e.integerMask = (uint64(1) << n) - 1
	e.integerBits = n
	return nil
}

// BitMask returns the current integer_mask.
func (e *Emulator) BitMask() uint64 { return e.integerMask }

// SignBitMask returns 1 << (integer_bits-1).
func (e *Emulator) SignBitMask() uint64 { return uint64(1) << (e.integerBits - 1) }

// ReadRegister implements operand.Machine.
func (e *Emulator) ReadRegister(index int) uint64 {
	if index >= len(e.generalRegisters) {
		return 0
	}
	return e.generalRegisters[index]
}

// WriteRegister implements operand.Machine. Register 0 is hardwired to
// zero: writes to it are discarded.
func (e *Emulator) WriteRegister(index int, value uint64) {
	if index == 0 {
		return
	}
	for len(e.generalRegisters) <= index {
		e.generalRegisters = append(e.generalRegisters, 0)
	}
	e.generalRegisters[index] = value & e.integerMask
}

// SpecialRegisterID implements operand.Machine, allocating a slot for name
// the first time it is seen.
func (e *Emulator) SpecialRegisterID(name string) int {
	if id, ok := e.specialRegisterMap[name]; ok {
		return id
	}
	id := len(e.specialRegisters)
	e.specialRegisterMap[name] = id
	e.specialRegisters = append(e.specialRegisters, 0)
	return id
}

func (e *Emulator) ReadSpecialRegister(id int) uint64 { return e.specialRegisters[id] }

func (e *Emulator) WriteSpecialRegister(id int, value uint64) {
	e.specialRegisters[id] = value & e.integerMask
}

func (e *Emulator) memoryBlock(address uint64, create bool) ([]uint64, uint64) {
	// Addresses are unsigned; a negative input (an unmasked SP-1 temporary,
	// seen here as a wrapped-around uint64) is brought back into range by
	// adding integer_mask+1.
	if int64(address) < 0 {
		address += e.integerMask + 1
	}
	offset := address & e.memoryBlockOffsetMask
	page := address >> e.memoryBlockOffsetBits
	block, ok := e.memoryBlocks[page]
	if !ok {
		if !create {
			return nil, offset
		}
		block = make([]uint64, DefaultMemoryBlockSize)
		e.memoryBlocks[page] = block
	}
	return block, offset
}

func (e *Emulator) ReadMemory(address uint64) uint64 {
	block, offset := e.memoryBlock(address, false)
	if block == nil {
		return 0
	}
	return block[offset]
}

func (e *Emulator) WriteMemory(address uint64, value uint64) {
	block, offset := e.memoryBlock(address, true)
	block[offset] = value & e.integerMask
}

// AddPort registers a named port implementation.
func (e *Emulator) AddPort(name string, port Port) {
	e.portMap[name] = len(e.ports)
	e.ports = append(e.ports, port)
}

func (e *Emulator) PortID(name string) (int, error) {
	id, ok := e.portMap[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", operand.ErrUnknownPort, name)
	}
	return id, nil
}

func (e *Emulator) ReadPort(id int) uint64         { return e.ports[id].Read(e) }
func (e *Emulator) WritePort(id int, value uint64) { e.ports[id].Write(e, value) }

// AddLabel associates a program address with a symbolic name, used by
// GetAddressName/GetCallStack for hot-path and debugger display.
func (e *Emulator) AddLabel(address uint64, name string) { e.labels[address] = name }

// LoadProgram installs the compiled program and resolves every
// instruction's operands against this machine.
func (e *Emulator) LoadProgram(program []isa.Instruction) error {
	e.rom = program
	for _, instr := range program {
		if err := instr.Compile(e); err != nil {
			return fmt.Errorf("emulator: compile %s: %w", instr, err)
		}
	}
	return nil
}

// GetInstruction returns the instruction at address, or a no-op for any
// out-of-range address (mirrors reads past the end of ROM being harmless).
func (e *Emulator) GetInstruction(address uint64) isa.Instruction {
	if address >= uint64(len(e.rom)) {
		return nop{}
	}
	return e.rom[address]
}

func (e *Emulator) GetCurrentInstruction() isa.Instruction {
	return e.GetInstruction(e.ReadSpecialRegister(e.pc))
}

// GetAddressName returns the label at address if one was recorded, else a
// zero-padded hex literal sized to the current integer width.
func (e *Emulator) GetAddressName(address uint64) string {
	if name, ok := e.labels[address]; ok {
		return name
	}
	width := (e.integerBits + 3) / 4
	return fmt.Sprintf("0x%0*X", width, address)
}

// Halt implements operand.Machine.
func (e *Emulator) Halt() { e.executing = false }

// Debug implements operand.Machine: it marks the machine as wanting to
// enter the debug state; Step honors it on the next instruction boundary.
func (e *Emulator) Debug() { e.debugging = true }

func (e *Emulator) IndicateCall(returnAddress uint64) {
	address := e.ReadSpecialRegister(e.pc) + 1
	e.callStack = append(e.callStack, address)
	e.callSourceStack = append(e.callSourceStack, returnAddress)
}

func (e *Emulator) IndicateReturn() {
	if n := len(e.callStack); n > 0 {
		e.callStack = e.callStack[:n-1]
	}
	if n := len(e.callSourceStack); n > 0 {
		e.callSourceStack = e.callSourceStack[:n-1]
	}
}

// Execute runs the fetch/decode/execute loop to completion (HLT, or PC
// leaving the program bounds), honoring any pending debug break.
func (e *Emulator) Execute() {
	e.executing = true
	for e.executing {
		e.Step()
	}
}

// Step advances the machine by exactly one decision point: either a full
// instruction (via StepInto) or, if a breakpoint/go-point/prior Debug()
// call has armed the debug state, a call into the break callback instead.
func (e *Emulator) Step() {
	address := e.ReadSpecialRegister(e.pc)
	if address >= uint64(len(e.rom)) {
		e.executing = false
		return
	}
	preExecution := false
	if e.atGopoint(address) {
		e.removeGopoint(address)
		e.Debug()
		preExecution = true
	} else if len(e.breakpoints) > 0 {
		if line := e.GetCurrentInstruction().Source().Line; line != 0 && e.atBreakpoint(line) {
			e.Debug()
			preExecution = true
		}
	}
	if e.debugging && e.breakCallback != nil {
		e.awaitingExecution = preExecution
		e.breakCallback(e)
	} else {
		e.StepInto()
	}
}

func (e *Emulator) atGopoint(address uint64) bool {
	for _, g := range e.gopoints {
		if g == address {
			return true
		}
	}
	return false
}

func (e *Emulator) removeGopoint(address uint64) {
	for i, g := range e.gopoints {
		if g == address {
			e.gopoints = append(e.gopoints[:i], e.gopoints[i+1:]...)
			return
		}
	}
}

func (e *Emulator) atBreakpoint(line int) bool {
	for _, b := range e.breakpoints {
		if b == line {
			return true
		}
	}
	return false
}

// SetGopoint arms a one-shot resume target, consumed the next time Step
// reaches it.
func (e *Emulator) SetGopoint(address uint64) { e.gopoints = append(e.gopoints, address) }

// SetBreakpoint arms a persistent breakpoint at a one-based source line.
func (e *Emulator) SetBreakpoint(line int) { e.breakpoints = append(e.breakpoints, line) }

// RemoveBreakpoint disarms the first breakpoint at line, if any.
func (e *Emulator) RemoveBreakpoint(line int) {
	for i, b := range e.breakpoints {
		if b == line {
			e.breakpoints = append(e.breakpoints[:i], e.breakpoints[i+1:]...)
			return
		}
	}
}

// SetBreakCallback installs the function Step invokes once the machine has
// entered the debug state, instead of executing the next instruction.
func (e *Emulator) SetBreakCallback(callback func(*Emulator)) { e.breakCallback = callback }

// Resume clears the debug state and continues free-running. If debugging
// was armed by a breakpoint/go-point (the instruction at the current PC
// never ran), it executes that instruction first so a repeated breakpoint
// doesn't immediately re-arm on an unmoved PC.
func (e *Emulator) Resume() {
	e.debugging = false
	if e.awaitingExecution {
		e.awaitingExecution = false
		e.StepInto()
	}
}

// StepInto executes exactly one instruction, marking its hot-path sample
// and advancing PC by one unless the instruction halted or trapped. Taken
// branches are advanced too: they write target-1 to compensate.
func (e *Emulator) StepInto() {
	e.markHotpath(e.ReadSpecialRegister(e.pc))
	instr := e.GetCurrentInstruction()
	// Halt clears executing; set it for this one instruction so a halt can
	// be told apart from a StepInto made outside Execute.
	wasExecuting := e.executing
	e.executing = true
	if err := instr.Execute(e); err != nil {
		e.log.WithError(err).WithField("source", instr.Source()).Error("instruction trap")
		e.executing = false
		return
	}
	if e.executing {
		e.WriteSpecialRegister(e.pc, e.ReadSpecialRegister(e.pc)+1)
	}
	e.executing = wasExecuting && e.executing
}

// StepOver executes the current instruction and, if it is a call, runs to
// completion of the call before yielding back to the debugger.
func (e *Emulator) StepOver() {
	e.SetGopoint(e.ReadSpecialRegister(e.pc) + 1)
	e.StepInto()
	e.debugging = false
}

// StepOut runs until the current function returns to its caller.
func (e *Emulator) StepOut() {
	if n := len(e.callSourceStack); n > 0 {
		// callStack holds callee entry addresses; the return address is the
		// instruction after the call site.
		e.SetGopoint(e.callSourceStack[n-1] + 1)
	}
	e.StepInto()
	e.debugging = false
}

// GetLine returns the one-based source line of the current instruction, or
// 0 if it carries no source annotation.
func (e *Emulator) GetLine() int {
	return e.GetCurrentInstruction().Source().Line
}

// RegisterSnapshot is one named register/value pair, used by GetRegisters.
type RegisterSnapshot struct {
	Name  string
	Value uint64
}

// GetRegisters returns every allocated general-purpose register (R1
// upward; R0 is always zero and omitted) and every special register.
func (e *Emulator) GetRegisters() []RegisterSnapshot {
	var out []RegisterSnapshot
	for i := 1; i < len(e.generalRegisters); i++ {
		out = append(out, RegisterSnapshot{Name: fmt.Sprintf("R%d", i), Value: e.generalRegisters[i]})
	}
	for name, id := range e.specialRegisterMap {
		out = append(out, RegisterSnapshot{Name: name, Value: e.specialRegisters[id]})
	}
	return out
}

// MemoryCell is one (address, value) pair, used by GetStack.
type MemoryCell struct {
	Address uint64
	Value   uint64
}

// GetStack returns up to 33 memory cells starting at the current stack
// pointer, for the debugger's stack view.
func (e *Emulator) GetStack() []MemoryCell {
	sp := e.ReadSpecialRegister(e.SpecialRegisterID("SP"))
	if sp == 0 {
		return nil
	}
	maxSP := sp + 32
	if e.integerMask-sp < 32 {
		maxSP = e.integerMask
	}
	var out []MemoryCell
	for addr := sp; addr <= maxSP; addr++ {
		out = append(out, MemoryCell{Address: addr, Value: e.ReadMemory(addr)})
	}
	return out
}

// CallFrame names one entry of the call stack for the debugger's call
// stack view.
type CallFrame struct {
	Address uint64
	Label   string
}

// GetCallStack returns the active call stack, most recent call last.
func (e *Emulator) GetCallStack() []CallFrame {
	out := make([]CallFrame, 0, len(e.callStack))
	for _, addr := range e.callStack {
		out = append(out, CallFrame{Address: addr, Label: e.labels[addr]})
	}
	return out
}

// GetHotpaths returns, per function label, the fraction of samples spent
// on each source line, normalized to sum to 1.0.
func (e *Emulator) GetHotpaths() map[string]map[int]float64 {
	out := make(map[string]map[int]float64, len(e.hotpaths))
	for fn, lines := range e.hotpaths {
		var total float64
		for _, count := range lines {
			total += count
		}
		normalized := make(map[int]float64, len(lines))
		for line, count := range lines {
			normalized[line] = count / total
		}
		out[fn] = normalized
	}
	return out
}

// markHotpath records one execution sample for address's source line,
// attributing it to the function at the top of the call stack (or the
// literal "0" at top level), then walks up the call-source chain so a
// callee's time is also reflected at every one of its callers' call sites.
// callStack/callSourceStack share one index space: level j+1 (1-based) is
// named by callStack[j]; level 0 is the literal top-level function "0".
func (e *Emulator) markHotpath(address uint64) {
	depth := len(e.callStack)
	e.tick(e.hotpathLevelName(depth), address)
	for j := depth - 1; j >= 0; j-- {
		e.tick(e.hotpathLevelName(j), e.callSourceStack[j])
	}
}

func (e *Emulator) hotpathLevelName(level int) string {
	if level == 0 {
		return "0"
	}
	return e.GetAddressName(e.callStack[level-1])
}

func (e *Emulator) tick(fn string, address uint64) {
	line := e.GetInstruction(address).Source().Line
	if line == 0 {
		return
	}
	lines, ok := e.hotpaths[fn]
	if !ok {
		lines = map[int]float64{}
		e.hotpaths[fn] = lines
	}
	lines[line]++
}

var _ operand.Machine = (*Emulator)(nil)

// Package cpu implements the SM83 instruction engine: register file, flags,
// interrupt dispatch, HALT/STOP and the opcode descriptor tables.
package cpu

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// Bus provides the CPU view of the address space.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Interrupts is the CPU side of the interrupt controller.
type Interrupts interface {
	// Pending returns IE & IF.
	Pending() uint8
	// Next returns the highest priority pending source.
	Next() (addr.Interrupt, bool)
	// Acknowledge clears the source request.
	Acknowledge(src addr.Interrupt)
}

// Flag is one of the 4 possible flags used in the flag register (high part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

const (
	// interruptCycles is the cost of dispatching to a handler.
	interruptCycles = 20
	// idleCycles is what a step costs while halted or stopped.
	idleCycles = 4
)

// CPU is the main struct holding the processor state
type CPU struct {
	// registers
	a  uint8
	f  uint8
	b  uint8
	c  uint8
	d  uint8
	e  uint8
	h  uint8
	l  uint8
	sp uint16
	pc uint16

	// metadata
	interruptsEnabled bool
	eiPending         bool // EI delay: interrupts enable after next instruction
	stopped           bool
	halted            bool
	cycles            uint64
	instructions      uint64

	// haltBug makes the next fetch skip the PC increment, so the byte after
	// HALT is read twice. Set by HALT with IME=0 and an interrupt pending.
	haltBug bool

	// fault is sticky until the registers are replaced.
	fault *IllegalOpcodeError

	bus Bus
	irq Interrupts
}

// New returns a CPU in its power-on state, all registers zero.
func New(bus Bus, irq Interrupts) *CPU {
	return &CPU{
		bus: bus,
		irq: irq,
	}
}

// Reset returns the CPU to its power-on state.
func (c *CPU) Reset() {
	bus, irq := c.bus, c.irq
	*c = CPU{bus: bus, irq: irq}
}

// SkipBoot loads the register values the boot program leaves behind.
func (c *CPU) SkipBoot() {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
}

// Step executes a single instruction, or dispatches one interrupt.
// It returns the T-cycles taken. An illegal opcode returns an
// *IllegalOpcodeError and the CPU stays faulted at that address until
// SetRegisters or Reset.
func (c *CPU) Step() (int, error) {
	if c.fault != nil {
		return 0, c.fault
	}

	pending := c.irq.Pending() != 0

	if c.halted {
		if !pending {
			c.cycles += idleCycles
			return idleCycles, nil
		}
		// waking from HALT does not trigger the HALT bug
		c.halted = false
	}

	if c.stopped {
		c.cycles += idleCycles
		return idleCycles, nil
	}

	if c.interruptsEnabled && pending {
		return c.serviceInterrupt(), nil
	}

	return c.execute()
}

func (c *CPU) execute() (int, error) {
	start := c.pc
	opcode := c.bus.Read(c.pc)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.pc++
	}

	instr := &opcodes[opcode]
	if opcode == 0xCB {
		instr = &cbOpcodes[c.bus.Read(c.pc)]
		c.pc++
	}

	if instr.Illegal() {
		c.pc = start
		c.fault = &IllegalOpcodeError{PC: start, Opcode: opcode}
		return 0, c.fault
	}

	var arg uint16
	switch instr.Operand {
	case OperandD8, OperandR8:
		arg = uint16(c.readImmediate())
	case OperandD16:
		arg = c.readImmediateWord()
	}

	// an EI executed before this instruction takes effect after it
	enable := c.eiPending

	cycles := instr.Cycles
	if taken := instr.exec(c, arg); taken && instr.CyclesTaken != 0 {
		cycles = instr.CyclesTaken
	}

	if enable && c.eiPending {
		c.eiPending = false
		c.interruptsEnabled = true
	}

	c.cycles += uint64(cycles)
	c.instructions++
	return cycles, nil
}

// serviceInterrupt pushes PC and jumps to the vector of the highest priority
// pending interrupt, clearing its request and IME.
func (c *CPU) serviceInterrupt() int {
	src, ok := c.irq.Next()
	if !ok {
		return 0
	}
	c.interruptsEnabled = false
	c.eiPending = false
	c.irq.Acknowledge(src)
	ret := c.pc
	if c.haltBug {
		// EI; HALT with a request already pending: the handler returns to
		// the HALT itself.
		c.haltBug = false
		ret--
	}
	c.pushStack(ret)
	c.pc = src.Vector()
	c.cycles += interruptCycles
	return interruptCycles
}

// ResumeFromStop leaves STOP mode, called on a joypad transition.
func (c *CPU) ResumeFromStop() {
	c.stopped = false
}

// readImmediate returns the byte at PC and advances it.
func (c *CPU) readImmediate() uint8 {
	n := c.bus.Read(c.pc)
	c.pc++
	return n
}

// readImmediateWord returns the little-endian word at PC and advances it twice.
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &^= uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

// flagToBit will return 1 if the passed flag is set, 0 otherwise
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if !condition {
		c.resetFlag(flag)
		return
	}
	c.setFlag(flag)
}

func (c *CPU) setBC(value uint16) {
	c.b, c.c = bit.Split(value)
}

func (c *CPU) getBC() uint16 {
	return bit.Combine(c.b, c.c)
}

func (c *CPU) setDE(value uint16) {
	c.d, c.e = bit.Split(value)
}

func (c *CPU) getDE() uint16 {
	return bit.Combine(c.d, c.e)
}

func (c *CPU) setHL(value uint16) {
	c.h, c.l = bit.Split(value)
}

func (c *CPU) getHL() uint16 {
	return bit.Combine(c.h, c.l)
}

func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	// F register lower 4 bits must be 0
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) getAF() uint16 {
	return bit.Combine(c.a, c.f)
}

// reg8 reads an operand by its 3 bit encoding: B C D E H L (HL) A.
func (c *CPU) reg8(index uint8) uint8 {
	switch index {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) setReg8(index uint8, value uint8) {
	switch index {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case 6:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

// reg16 reads a pair by its 2 bit encoding: BC DE HL SP.
func (c *CPU) reg16(index uint8) uint16 {
	switch index {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setReg16(index uint8, value uint16) {
	switch index {
	case 0:
		c.setBC(value)
	case 1:
		c.setDE(value)
	case 2:
		c.setHL(value)
	default:
		c.sp = value
	}
}

// condition evaluates a branch condition by its 2 bit encoding: NZ Z NC C.
func (c *CPU) condition(index uint8) bool {
	switch index {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}

// Cycles is the number of T-cycles executed since power on.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Instructions is the number of instructions executed since power on.
func (c *CPU) Instructions() uint64 { return c.instructions }

// IME reports the interrupt master enable flip-flop.
func (c *CPU) IME() bool { return c.interruptsEnabled }

// Halted reports whether the CPU is waiting in HALT.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether the CPU is waiting in STOP.
func (c *CPU) Stopped() bool { return c.stopped }

// Fault returns the illegal opcode the CPU is stuck on, if any.
func (c *CPU) Fault() error {
	if c.fault == nil {
		return nil
	}
	return c.fault
}

// FlagString returns a human-readable representation of the flag register
func (c *CPU) FlagString() string {
	return flagString(c.f)
}

func flagString(f uint8) string {
	out := []byte("----")
	for i, name := range "ZNHC" {
		if f&(0x80>>i) != 0 {
			out[i] = byte(name)
		}
	}
	return string(out)
}

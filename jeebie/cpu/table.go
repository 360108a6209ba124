package cpu

import (
	"fmt"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/addr"
)

// Operand is the shape of the immediate bytes following an opcode.
type Operand uint8

const (
	OperandNone Operand = iota
	OperandD8           // unsigned byte
	OperandD16          // little-endian word
	OperandR8           // signed byte
)

// Size returns the number of immediate bytes.
func (o Operand) Size() int {
	switch o {
	case OperandD8, OperandR8:
		return 1
	case OperandD16:
		return 2
	}
	return 0
}

// Instruction describes one opcode. Mnemonics use d8, d16, a8, a16 and r8
// as placeholders for the immediate operand.
type Instruction struct {
	Opcode   uint8
	Prefixed bool // second byte of a 0xCB pair
	Mnemonic string
	Operand  Operand
	// Cycles is the cost in T-cycles; for conditional branches it is the
	// cost when the condition does not hold.
	Cycles int
	// CyclesTaken is the cost of a conditional branch that is taken, zero
	// for everything else.
	CyclesTaken int
	// Flags describes the effect on Z, N, H and C in that order: a letter is
	// computed, 0 and 1 are forced, - is untouched.
	Flags string

	// exec runs the instruction with the decoded immediate. It returns true
	// when a conditional branch is taken.
	exec func(c *CPU, arg uint16) bool
}

// Length is the size of the encoded instruction in bytes.
func (i *Instruction) Length() int {
	n := 1 + i.Operand.Size()
	if i.Prefixed {
		n++
	}
	return n
}

// Illegal reports whether the opcode is unassigned.
func (i *Instruction) Illegal() bool {
	return i.exec == nil
}

func (i *Instruction) String() string {
	return i.Mnemonic
}

// Lookup returns the descriptor of an unprefixed opcode. 0xCB returns the
// prefix placeholder, use LookupCB for the second byte.
func Lookup(opcode uint8) *Instruction {
	return &opcodes[opcode]
}

// LookupCB returns the descriptor of a 0xCB prefixed opcode.
func LookupCB(opcode uint8) *Instruction {
	return &cbOpcodes[opcode]
}

var (
	opcodes   [256]Instruction
	cbOpcodes [256]Instruction
)

var (
	reg8Names  = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	reg16Names = [4]string{"BC", "DE", "HL", "SP"}
	stackNames = [4]string{"BC", "DE", "HL", "AF"}
	condNames  = [4]string{"NZ", "Z", "NC", "C"}
)

// illegalOpcodes hang the CPU on real hardware.
var illegalOpcodes = []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func init() {
	buildOpcodes()
	buildCBOpcodes()

	for op := range opcodes {
		opcodes[op].Opcode = uint8(op)
		cbOpcodes[op].Opcode = uint8(op)
		cbOpcodes[op].Prefixed = true
	}
	for _, op := range illegalOpcodes {
		opcodes[op] = Instruction{Opcode: op, Mnemonic: fmt.Sprintf("ILLEGAL_%02X", op), Cycles: 4, Flags: "----"}
	}
	for op := range opcodes {
		if opcodes[op].Mnemonic == "" {
			panic(fmt.Sprintf("cpu: opcode 0x%02X has no descriptor", op))
		}
	}
}

type execFunc func(c *CPU, arg uint16) bool

func def(op uint8, mnemonic string, operand Operand, cycles int, flags string, exec execFunc) {
	opcodes[op] = Instruction{Mnemonic: mnemonic, Operand: operand, Cycles: cycles, Flags: flags, exec: exec}
}

func defBranch(op uint8, mnemonic string, operand Operand, cycles, taken int, exec execFunc) {
	opcodes[op] = Instruction{Mnemonic: mnemonic, Operand: operand, Cycles: cycles, CyclesTaken: taken, Flags: "----", exec: exec}
}

// do adapts an instruction that never branches.
func do(f func(c *CPU, arg uint16)) execFunc {
	return func(c *CPU, arg uint16) bool {
		f(c, arg)
		return false
	}
}

// memCost returns the cost of an r8 operand form: the (HL) variant costs
// more because of the extra memory access.
func memCost(index uint8, reg, mem int) int {
	if index == 6 {
		return mem
	}
	return reg
}

func buildOpcodes() {
	def(0x00, "NOP", OperandNone, 4, "----", do(func(c *CPU, _ uint16) {}))
	def(0x10, "STOP 0", OperandD8, 4, "----", do(func(c *CPU, _ uint16) {
		c.stopped = true
		c.bus.Write(addr.DIV, 0)
	}))
	def(0x76, "HALT", OperandNone, 4, "----", do(func(c *CPU, _ uint16) {
		if !c.interruptsEnabled && c.irq.Pending() != 0 {
			c.haltBug = true
			return
		}
		c.halted = true
	}))
	def(0xF3, "DI", OperandNone, 4, "----", do(func(c *CPU, _ uint16) {
		c.interruptsEnabled = false
		c.eiPending = false
	}))
	def(0xFB, "EI", OperandNone, 4, "----", do(func(c *CPU, _ uint16) {
		c.eiPending = true
	}))
	def(0xCB, "PREFIX CB", OperandNone, 4, "----", do(func(c *CPU, _ uint16) {}))

	// 16 bit loads and arithmetic
	for i := range uint8(4) {
		rr := i
		name := reg16Names[rr]
		def(0x01+rr<<4, "LD "+name+",d16", OperandD16, 12, "----", do(func(c *CPU, arg uint16) {
			c.setReg16(rr, arg)
		}))
		def(0x03+rr<<4, "INC "+name, OperandNone, 8, "----", do(func(c *CPU, _ uint16) {
			c.setReg16(rr, c.reg16(rr)+1)
		}))
		def(0x0B+rr<<4, "DEC "+name, OperandNone, 8, "----", do(func(c *CPU, _ uint16) {
			c.setReg16(rr, c.reg16(rr)-1)
		}))
		def(0x09+rr<<4, "ADD HL,"+name, OperandNone, 8, "-0HC", do(func(c *CPU, _ uint16) {
			c.addHL(c.reg16(rr))
		}))

		stack := stackNames[rr]
		def(0xC5+rr<<4, "PUSH "+stack, OperandNone, 16, "----", do(func(c *CPU, _ uint16) {
			if rr == 3 {
				c.pushStack(c.getAF())
				return
			}
			c.pushStack(c.reg16(rr))
		}))
		popFlags := "----"
		if rr == 3 {
			popFlags = "ZNHC"
		}
		def(0xC1+rr<<4, "POP "+stack, OperandNone, 12, popFlags, do(func(c *CPU, _ uint16) {
			value := c.popStack()
			if rr == 3 {
				c.setAF(value)
				return
			}
			c.setReg16(rr, value)
		}))
	}

	// indirect accumulator loads
	def(0x02, "LD (BC),A", OperandNone, 8, "----", do(func(c *CPU, _ uint16) { c.bus.Write(c.getBC(), c.a) }))
	def(0x12, "LD (DE),A", OperandNone, 8, "----", do(func(c *CPU, _ uint16) { c.bus.Write(c.getDE(), c.a) }))
	def(0x22, "LD (HL+),A", OperandNone, 8, "----", do(func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl + 1)
	}))
	def(0x32, "LD (HL-),A", OperandNone, 8, "----", do(func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.bus.Write(hl, c.a)
		c.setHL(hl - 1)
	}))
	def(0x0A, "LD A,(BC)", OperandNone, 8, "----", do(func(c *CPU, _ uint16) { c.a = c.bus.Read(c.getBC()) }))
	def(0x1A, "LD A,(DE)", OperandNone, 8, "----", do(func(c *CPU, _ uint16) { c.a = c.bus.Read(c.getDE()) }))
	def(0x2A, "LD A,(HL+)", OperandNone, 8, "----", do(func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl + 1)
	}))
	def(0x3A, "LD A,(HL-)", OperandNone, 8, "----", do(func(c *CPU, _ uint16) {
		hl := c.getHL()
		c.a = c.bus.Read(hl)
		c.setHL(hl - 1)
	}))
	def(0x08, "LD (a16),SP", OperandD16, 20, "----", do(func(c *CPU, arg uint16) {
		c.bus.Write(arg, uint8(c.sp))
		c.bus.Write(arg+1, uint8(c.sp>>8))
	}))
	def(0xE0, "LDH (a8),A", OperandD8, 12, "----", do(func(c *CPU, arg uint16) { c.bus.Write(0xFF00|arg, c.a) }))
	def(0xF0, "LDH A,(a8)", OperandD8, 12, "----", do(func(c *CPU, arg uint16) { c.a = c.bus.Read(0xFF00 | arg) }))
	def(0xE2, "LD (C),A", OperandNone, 8, "----", do(func(c *CPU, _ uint16) { c.bus.Write(0xFF00|uint16(c.c), c.a) }))
	def(0xF2, "LD A,(C)", OperandNone, 8, "----", do(func(c *CPU, _ uint16) { c.a = c.bus.Read(0xFF00 | uint16(c.c)) }))
	def(0xEA, "LD (a16),A", OperandD16, 16, "----", do(func(c *CPU, arg uint16) { c.bus.Write(arg, c.a) }))
	def(0xFA, "LD A,(a16)", OperandD16, 16, "----", do(func(c *CPU, arg uint16) { c.a = c.bus.Read(arg) }))

	// stack pointer arithmetic
	def(0xE8, "ADD SP,r8", OperandR8, 16, "00HC", do(func(c *CPU, arg uint16) { c.sp = c.spOffset(uint8(arg)) }))
	def(0xF8, "LD HL,SP+r8", OperandR8, 12, "00HC", do(func(c *CPU, arg uint16) { c.setHL(c.spOffset(uint8(arg))) }))
	def(0xF9, "LD SP,HL", OperandNone, 8, "----", do(func(c *CPU, _ uint16) { c.sp = c.getHL() }))

	// 8 bit increments, decrements and immediate loads
	for i := range uint8(8) {
		r := i
		name := reg8Names[r]
		def(0x04+r<<3, "INC "+name, OperandNone, memCost(r, 4, 12), "Z0H-", do(func(c *CPU, _ uint16) {
			c.setReg8(r, c.inc(c.reg8(r)))
		}))
		def(0x05+r<<3, "DEC "+name, OperandNone, memCost(r, 4, 12), "Z1H-", do(func(c *CPU, _ uint16) {
			c.setReg8(r, c.dec(c.reg8(r)))
		}))
		def(0x06+r<<3, "LD "+name+",d8", OperandD8, memCost(r, 8, 12), "----", do(func(c *CPU, arg uint16) {
			c.setReg8(r, uint8(arg))
		}))
	}

	// accumulator rotates always clear Z
	def(0x07, "RLCA", OperandNone, 4, "000C", do(func(c *CPU, _ uint16) { c.a = c.rlc(c.a); c.resetFlag(zeroFlag) }))
	def(0x0F, "RRCA", OperandNone, 4, "000C", do(func(c *CPU, _ uint16) { c.a = c.rrc(c.a); c.resetFlag(zeroFlag) }))
	def(0x17, "RLA", OperandNone, 4, "000C", do(func(c *CPU, _ uint16) { c.a = c.rl(c.a); c.resetFlag(zeroFlag) }))
	def(0x1F, "RRA", OperandNone, 4, "000C", do(func(c *CPU, _ uint16) { c.a = c.rr(c.a); c.resetFlag(zeroFlag) }))

	def(0x27, "DAA", OperandNone, 4, "Z-0C", do(func(c *CPU, _ uint16) { c.daa() }))
	def(0x2F, "CPL", OperandNone, 4, "-11-", do(func(c *CPU, _ uint16) {
		c.a = ^c.a
		c.setFlag(subFlag)
		c.setFlag(halfCarryFlag)
	}))
	def(0x37, "SCF", OperandNone, 4, "-001", do(func(c *CPU, _ uint16) {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlag(carryFlag)
	}))
	def(0x3F, "CCF", OperandNone, 4, "-00C", do(func(c *CPU, _ uint16) {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
	}))

	// register to register loads, 0x76 is HALT
	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			continue
		}
		dst, src := uint8(op>>3)&7, uint8(op)&7
		cycles := 4
		if dst == 6 || src == 6 {
			cycles = 8
		}
		def(uint8(op), "LD "+reg8Names[dst]+","+reg8Names[src], OperandNone, cycles, "----", do(func(c *CPU, _ uint16) {
			c.setReg8(dst, c.reg8(src))
		}))
	}

	// accumulator arithmetic, register and immediate forms
	type aluOp struct {
		name  string
		flags string
		apply func(c *CPU, value uint8)
	}
	aluOps := [8]aluOp{
		{"ADD A,", "Z0HC", func(c *CPU, v uint8) { c.add(v, false) }},
		{"ADC A,", "Z0HC", func(c *CPU, v uint8) { c.add(v, true) }},
		{"SUB ", "Z1HC", func(c *CPU, v uint8) { c.a = c.sub(v, false) }},
		{"SBC A,", "Z1HC", func(c *CPU, v uint8) { c.a = c.sub(v, true) }},
		{"AND ", "Z010", func(c *CPU, v uint8) { c.and(v) }},
		{"XOR ", "Z000", func(c *CPU, v uint8) { c.xor(v) }},
		{"OR ", "Z000", func(c *CPU, v uint8) { c.or(v) }},
		{"CP ", "Z1HC", func(c *CPU, v uint8) { c.sub(v, false) }},
	}
	for k, alu := range aluOps {
		apply := alu.apply
		for i := range uint8(8) {
			r := i
			def(0x80+uint8(k)<<3+r, alu.name+reg8Names[r], OperandNone, memCost(r, 4, 8), alu.flags, do(func(c *CPU, _ uint16) {
				apply(c, c.reg8(r))
			}))
		}
		def(0xC6+uint8(k)<<3, alu.name+"d8", OperandD8, 8, alu.flags, do(func(c *CPU, arg uint16) {
			apply(c, uint8(arg))
		}))
	}

	// jumps, calls and returns
	defBranch(0x18, "JR r8", OperandR8, 12, 0, jumpRelative)
	defBranch(0xC3, "JP a16", OperandD16, 16, 0, jumpAbsolute)
	defBranch(0xE9, "JP HL", OperandNone, 4, 0, func(c *CPU, _ uint16) bool {
		c.pc = c.getHL()
		return false
	})
	defBranch(0xCD, "CALL a16", OperandD16, 24, 0, call)
	defBranch(0xC9, "RET", OperandNone, 16, 0, ret)
	defBranch(0xD9, "RETI", OperandNone, 16, 0, func(c *CPU, arg uint16) bool {
		c.interruptsEnabled = true
		return ret(c, arg)
	})

	for i := range uint8(4) {
		cc := i
		name := condNames[cc]
		defBranch(0x20+cc<<3, "JR "+name+",r8", OperandR8, 8, 12, when(cc, jumpRelative))
		defBranch(0xC2+cc<<3, "JP "+name+",a16", OperandD16, 12, 16, when(cc, jumpAbsolute))
		defBranch(0xC4+cc<<3, "CALL "+name+",a16", OperandD16, 12, 24, when(cc, call))
		defBranch(0xC0+cc<<3, "RET "+name, OperandNone, 8, 20, when(cc, ret))
	}

	for i := range uint8(8) {
		vector := uint16(i) << 3
		defBranch(0xC7+uint8(i)<<3, fmt.Sprintf("RST %02XH", vector), OperandNone, 16, 0, func(c *CPU, _ uint16) bool {
			c.pushStack(c.pc)
			c.pc = vector
			return false
		})
	}
}

// when wraps an unconditional branch in a condition check; the result
// reports whether the branch was taken.
func when(cc uint8, branch execFunc) execFunc {
	return func(c *CPU, arg uint16) bool {
		if !c.condition(cc) {
			return false
		}
		branch(c, arg)
		return true
	}
}

func jumpRelative(c *CPU, arg uint16) bool {
	c.pc = uint16(int32(c.pc) + int32(int8(uint8(arg))))
	return false
}

func jumpAbsolute(c *CPU, arg uint16) bool {
	c.pc = arg
	return false
}

func call(c *CPU, arg uint16) bool {
	c.pushStack(c.pc)
	c.pc = arg
	return false
}

func ret(c *CPU, _ uint16) bool {
	c.pc = c.popStack()
	return false
}

// FormatMnemonic fills the operand placeholder of a mnemonic. pc is the
// address following the instruction, used for relative jumps.
func FormatMnemonic(instr *Instruction, arg uint16, pc uint16) string {
	m := instr.Mnemonic
	switch instr.Operand {
	case OperandD8:
		m = strings.Replace(m, "a8", fmt.Sprintf("$FF%02X", arg), 1)
		m = strings.Replace(m, "d8", fmt.Sprintf("$%02X", arg), 1)
	case OperandD16:
		m = strings.Replace(m, "a16", fmt.Sprintf("$%04X", arg), 1)
		m = strings.Replace(m, "d16", fmt.Sprintf("$%04X", arg), 1)
	case OperandR8:
		offset := int8(uint8(arg))
		if strings.HasPrefix(m, "JR") {
			target := uint16(int32(pc) + int32(offset))
			m = strings.Replace(m, "r8", fmt.Sprintf("$%04X", target), 1)
		} else {
			m = strings.Replace(m, "SP+r8", fmt.Sprintf("SP%+d", offset), 1)
			m = strings.Replace(m, "r8", fmt.Sprintf("%d", offset), 1)
		}
	}
	return m
}

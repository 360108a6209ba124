package cpu

import "fmt"

func defCB(op uint8, mnemonic string, cycles int, flags string, exec execFunc) {
	cbOpcodes[op] = Instruction{Mnemonic: mnemonic, Cycles: cycles, Flags: flags, exec: exec}
}

// buildCBOpcodes fills the prefixed table. The low 3 bits pick the operand,
// bits 3-5 the shift kind or bit index, bits 6-7 the group.
func buildCBOpcodes() {
	type shiftOp struct {
		name  string
		flags string
		apply func(c *CPU, value uint8) uint8
	}
	shifts := [8]shiftOp{
		{"RLC", "Z00C", (*CPU).rlc},
		{"RRC", "Z00C", (*CPU).rrc},
		{"RL", "Z00C", (*CPU).rl},
		{"RR", "Z00C", (*CPU).rr},
		{"SLA", "Z00C", (*CPU).sla},
		{"SRA", "Z00C", (*CPU).sra},
		{"SWAP", "Z000", (*CPU).swap},
		{"SRL", "Z00C", (*CPU).srl},
	}

	for i := range uint8(8) {
		r := i
		name := reg8Names[r]

		for k, shift := range shifts {
			apply := shift.apply
			defCB(uint8(k)<<3|r, shift.name+" "+name, memCost(r, 8, 16), shift.flags, do(func(c *CPU, _ uint16) {
				c.setReg8(r, apply(c, c.reg8(r)))
			}))
		}

		for n := range uint8(8) {
			b := n
			defCB(0x40|b<<3|r, fmt.Sprintf("BIT %d,%s", b, name), memCost(r, 8, 12), "Z01-", do(func(c *CPU, _ uint16) {
				c.bit(b, c.reg8(r))
			}))
			defCB(0x80|b<<3|r, fmt.Sprintf("RES %d,%s", b, name), memCost(r, 8, 16), "----", do(func(c *CPU, _ uint16) {
				c.setReg8(r, c.reg8(r)&^(1<<b))
			}))
			defCB(0xC0|b<<3|r, fmt.Sprintf("SET %d,%s", b, name), memCost(r, 8, 16), "----", do(func(c *CPU, _ uint16) {
				c.setReg8(r, c.reg8(r)|1<<b)
			}))
		}
	}
}

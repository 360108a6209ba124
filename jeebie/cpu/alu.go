package cpu

func (c *CPU) inc(value uint8) uint8 {
	result := value + 1
	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, result&0x0F == 0)
	return result
}

func (c *CPU) dec(value uint8) uint8 {
	result := value - 1
	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, result&0x0F == 0x0F)
	return result
}

// add implements ADD and ADC on A.
func (c *CPU) add(value uint8, withCarry bool) {
	carry := uint16(0)
	if withCarry {
		carry = uint16(c.flagToBit(carryFlag))
	}
	a := uint16(c.a)
	v := uint16(value)
	result := a + v + carry

	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0x0F)+(v&0x0F)+carry > 0x0F)
	c.setFlagToCondition(carryFlag, result > 0xFF)
	c.a = uint8(result)
}

// sub implements SUB, SBC and CP. It returns A - value (- carry) without
// storing it.
func (c *CPU) sub(value uint8, withCarry bool) uint8 {
	carry := 0
	if withCarry {
		carry = int(c.flagToBit(carryFlag))
	}
	a := int(c.a)
	v := int(value)
	result := a - v - carry

	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0x0F)-(v&0x0F)-carry < 0)
	c.setFlagToCondition(carryFlag, result < 0)
	return uint8(result)
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.f = uint8(halfCarryFlag)
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.f = 0
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.f = 0
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

// addHL adds a pair to HL. Half carry is out of bit 11, Z is untouched.
func (c *CPU) addHL(value uint16) {
	hl := c.getHL()
	result := uint32(hl) + uint32(value)

	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlagToCondition(carryFlag, result > 0xFFFF)
	c.setHL(uint16(result))
}

// spOffset computes SP plus a signed byte, as ADD SP,r8 and LD HL,SP+r8 do.
// H and C come from the unsigned addition of the low bytes.
func (c *CPU) spOffset(offset uint8) uint16 {
	sp := c.sp
	result := uint16(int32(sp) + int32(int8(offset)))

	c.f = 0
	c.setFlagToCondition(halfCarryFlag, (sp&0x0F)+uint16(offset&0x0F) > 0x0F)
	c.setFlagToCondition(carryFlag, (sp&0xFF)+uint16(offset) > 0xFF)
	return result
}

// daa adjusts A back to BCD after an addition or subtraction.
func (c *CPU) daa() {
	a := c.a
	var adjust uint8
	carry := c.isSetFlag(carryFlag)

	if c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) {
			adjust |= 0x06
		}
		if carry {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if c.isSetFlag(halfCarryFlag) || a&0x0F > 0x09 {
			adjust |= 0x06
		}
		if carry || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}

// shiftResult stores the Z00C flags shared by every CB rotate and shift.
func (c *CPU) shiftResult(result uint8, carry bool) uint8 {
	c.f = 0
	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlagToCondition(carryFlag, carry)
	return result
}

func (c *CPU) rlc(value uint8) uint8 {
	return c.shiftResult(value<<1|value>>7, value&0x80 != 0)
}

func (c *CPU) rrc(value uint8) uint8 {
	return c.shiftResult(value>>1|value<<7, value&0x01 != 0)
}

func (c *CPU) rl(value uint8) uint8 {
	return c.shiftResult(value<<1|c.flagToBit(carryFlag), value&0x80 != 0)
}

func (c *CPU) rr(value uint8) uint8 {
	return c.shiftResult(value>>1|c.flagToBit(carryFlag)<<7, value&0x01 != 0)
}

func (c *CPU) sla(value uint8) uint8 {
	return c.shiftResult(value<<1, value&0x80 != 0)
}

func (c *CPU) sra(value uint8) uint8 {
	return c.shiftResult(value>>1|value&0x80, value&0x01 != 0)
}

func (c *CPU) swap(value uint8) uint8 {
	return c.shiftResult(value<<4|value>>4, false)
}

func (c *CPU) srl(value uint8) uint8 {
	return c.shiftResult(value>>1, value&0x01 != 0)
}

// bit tests bit n of value: Z01-.
func (c *CPU) bit(n, value uint8) {
	c.setFlagToCondition(zeroFlag, value&(1<<n) == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

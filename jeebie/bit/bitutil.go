package bit

// Combine joins two bytes into a 16 bit word, high byte first.
func Combine(high, low uint8) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// Split returns the high and low bytes of a 16 bit word.
func Split(value uint16) (high, low uint8) {
	return High(value), Low(value)
}

// Low returns the least significant byte of a 16 bit word.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the most significant byte of a 16 bit word.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// IsSet reports whether the bit at index is 1.
func IsSet(index, value uint8) bool {
	return (value>>index)&1 == 1
}

// IsSet16 is IsSet for 16 bit words.
func IsSet16(index uint8, value uint16) bool {
	return (value>>index)&1 == 1
}

// Set returns value with the bit at index set to 1.
func Set(index, value uint8) uint8 {
	return value | (1 << index)
}

// Reset returns value with the bit at index cleared.
func Reset(index, value uint8) uint8 {
	return value &^ (1 << index)
}

// SetTo sets or clears the bit at index depending on on.
func SetTo(index, value uint8, on bool) uint8 {
	if on {
		return Set(index, value)
	}
	return Reset(index, value)
}

// Value returns 1 if the bit at index is set, 0 otherwise.
func Value(index, value uint8) uint8 {
	return (value >> index) & 1
}

// ExtractBits extracts bits from highBit to lowBit (inclusive).
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101
func ExtractBits(value uint8, highBit, lowBit uint8) uint8 {
	width := highBit - lowBit + 1
	mask := uint8((1 << width) - 1)
	return (value >> lowBit) & mask
}

package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumber reads a debugger number: decimal, 0x or $ hex, 0b binary, with
// an optional leading minus sign.
func ParseNumber(s string) (int, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	sign := 1
	if rest, ok := strings.CutPrefix(text, "-"); ok {
		sign, text = -1, rest
	}

	base := 10
	switch {
	case strings.HasPrefix(text, "$"):
		base, text = 16, text[1:]
	case strings.HasPrefix(text, "0x"):
		base, text = 16, text[2:]
	case strings.HasPrefix(text, "0b"):
		base, text = 2, text[2:]
	}

	n, err := strconv.ParseInt(text, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return sign * int(n), nil
}

// numberArg returns args[index] parsed, or def when missing or malformed.
func numberArg(args []string, index, def int) int {
	if index >= len(args) {
		return def
	}
	n, err := ParseNumber(args[index])
	if err != nil {
		return def
	}
	return n
}

package memory

import (
	"strings"
	"unicode"
)

// cleanGameboyTitle turns the raw header title into something printable:
// NUL padding becomes spaces, non printable bytes become '?', and the result
// is trimmed. Newer headers reuse the last title bytes for the manufacturer
// code and CGB flag, so a byte with the high bit set ends the title.
func cleanGameboyTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))

	for _, b := range titleBytes {
		if b >= 0x80 {
			break
		}
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}

	return title
}

package video

// noOwner marks a pixel no sprite has claimed on the current line.
const noOwner = -1

type pixelOwner struct {
	index int // OAM index
	x     int // screen X of the owning sprite
}

// SpritePriorityBuffer resolves sprite overlap on one scanline, see
// https://gbdev.io/pandocs/OAM.html#drawing-priority.
//
// Every opaque sprite pixel is offered to the buffer in OAM order. A pixel
// goes to the sprite with the smallest X, ties go to the smaller OAM index.
// Rendering then draws each pixel only for its owner, so the outcome does
// not depend on drawing order. Transparent pixels are never offered, which
// lets a lower priority sprite show through them.
//
//	X:         10 11 12 13 14 15 16 17 18 19 20 21
//	OAM 1:           [ D  D  D  D  D  D  D  D]      X=12
//	OAM 3:           [ C  C  C  C  C  C  C  C]      X=12
//	OAM 5:     [ E  E  E  E  E  E  E  E]            X=10
//	drawn:       E  E  E  E  E  E  E  E  D  D
type SpritePriorityBuffer struct {
	owners [FramebufferWidth]pixelOwner
}

// Reset releases every pixel, ready for a new scanline.
func (s *SpritePriorityBuffer) Reset() {
	for i := range s.owners {
		s.owners[i] = pixelOwner{index: noOwner}
	}
}

// Claim offers pixel px to the sprite at OAM index with screen position x.
// It reports whether the sprite now owns the pixel.
func (s *SpritePriorityBuffer) Claim(px, index, x int) bool {
	if px < 0 || px >= FramebufferWidth {
		return false
	}

	cur := &s.owners[px]
	if cur.index != noOwner && (cur.x < x || (cur.x == x && cur.index < index)) {
		return false
	}
	*cur = pixelOwner{index: index, x: x}
	return true
}

// Owner returns the OAM index owning pixel px, or -1.
func (s *SpritePriorityBuffer) Owner(px int) int {
	if px < 0 || px >= FramebufferWidth {
		return noOwner
	}
	return s.owners[px].index
}

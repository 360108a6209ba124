package jeebie

import (
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Emulator is the surface a presenter drives: run to the next frame, show
// it and feed joypad input back.
type Emulator interface {
	RunUntilFrame() error
	Frame() *video.FrameBuffer
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
}

var _ Emulator = (*DMG)(nil)

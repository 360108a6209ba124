// Package render presents a running machine: a terminal viewer driven by
// tcell, a headless runner and PNG snapshots.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	cpuFrequency = 4194304

	// frameDuration is one DMG frame at the real clock, about 59.73 Hz.
	frameDuration = time.Duration(video.FrameCycles) * time.Second / cpuFrequency

	// terminals report key presses only, a key counts as held for this many
	// frames after its last repeat.
	keyHoldFrames = 8

	upperHalfBlock = '▀'
)

// joypadKeys is the keyboard layout for non-rune keys.
var joypadKeys = map[tcell.Key]memory.JoypadKey{
	tcell.KeyRight: memory.JoypadRight,
	tcell.KeyLeft:  memory.JoypadLeft,
	tcell.KeyUp:    memory.JoypadUp,
	tcell.KeyDown:  memory.JoypadDown,
	tcell.KeyEnter: memory.JoypadStart,
}

var joypadRunes = map[rune]memory.JoypadKey{
	'a': memory.JoypadA,
	's': memory.JoypadB,
	'q': memory.JoypadSelect,
}

// TerminalRenderer shows frames in a terminal, two pixel rows per text row,
// and feeds keyboard input to the joypad.
type TerminalRenderer struct {
	screen      tcell.Screen
	emulator    jeebie.Emulator
	palette     video.Palette
	snapshotDir string

	held   map[memory.JoypadKey]int
	frames int
}

// NewTerminalRenderer takes over the terminal. F12 snapshots are written to
// snapshotDir, or the working directory when it is empty.
func NewTerminalRenderer(emu jeebie.Emulator, snapshotDir string) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return newTerminalRenderer(emu, screen, snapshotDir)
}

func newTerminalRenderer(emu jeebie.Emulator, screen tcell.Screen, snapshotDir string) (*TerminalRenderer, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	return &TerminalRenderer{
		screen:      screen,
		emulator:    emu,
		palette:     video.DefaultPalette,
		snapshotDir: snapshotDir,
		held:        make(map[memory.JoypadKey]int),
	}, nil
}

// Run emulates at the real frame rate until Escape or Ctrl+C is pressed, ctx
// is done, or the machine fails.
func (t *TerminalRenderer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer func() {
		slog.Info("finishing terminal")
		t.screen.Fini()
	}()
	defer close(done)

	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("received signal to stop")
			return nil
		case ev := <-events:
			if t.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if err := t.frame(); err != nil {
				return err
			}
		}
	}
}

// frame runs the machine for one frame and shows it.
func (t *TerminalRenderer) frame() error {
	t.releaseExpired()
	if err := t.emulator.RunUntilFrame(); err != nil {
		return err
	}
	t.frames++
	t.draw(t.emulator.Frame())
	t.screen.Show()
	return nil
}

// handleEvent applies one terminal event and reports whether to quit.
func (t *TerminalRenderer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyF12:
			t.snapshot()
			return false
		}
		if key, ok := joypadKey(ev); ok {
			if _, down := t.held[key]; !down {
				t.emulator.Press(key)
			}
			t.held[key] = keyHoldFrames
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return false
}

func joypadKey(ev *tcell.EventKey) (memory.JoypadKey, bool) {
	if ev.Key() == tcell.KeyRune {
		key, ok := joypadRunes[ev.Rune()]
		return key, ok
	}
	key, ok := joypadKeys[ev.Key()]
	return key, ok
}

// releaseExpired lets go of keys that have not repeated recently.
func (t *TerminalRenderer) releaseExpired() {
	for key, left := range t.held {
		if left <= 1 {
			t.emulator.Release(key)
			delete(t.held, key)
			continue
		}
		t.held[key] = left - 1
	}
}

func (t *TerminalRenderer) draw(frame *video.FrameBuffer) {
	for row := range video.FramebufferHeight / 2 {
		for x := range video.FramebufferWidth {
			top := t.color(frame.Shade(x, row*2))
			bottom := t.color(frame.Shade(x, row*2+1))
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.screen.SetContent(x, row, upperHalfBlock, nil, style)
		}
	}
}

func (t *TerminalRenderer) color(shade uint8) tcell.Color {
	c := t.palette.RGBA(shade)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (t *TerminalRenderer) snapshot() {
	path := SnapshotConfig{Directory: t.snapshotDir, ROMName: "jeebie_snapshot"}.Path(t.frames)
	if err := SaveFramePNG(t.emulator.Frame(), t.palette, path); err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path)
}

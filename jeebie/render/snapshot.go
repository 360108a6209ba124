package render

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/video"
)

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	ROMName   string // ROM name for snapshot filenames
}

// NewSnapshotConfig creates a snapshot configuration from CLI parameters. An
// empty directory selects a fresh temporary one.
func NewSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		ROMName:  strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath)),
	}
	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		dir, err := os.MkdirTemp("", "jeebie-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("creating snapshot directory: %w", err)
		}
		directory = dir
	} else if err := os.MkdirAll(directory, 0o755); err != nil {
		return config, fmt.Errorf("creating snapshot directory: %w", err)
	}
	config.Directory = directory

	return config, nil
}

// Path returns the file a snapshot of the given frame number is written to.
func (c SnapshotConfig) Path(frame int) string {
	return filepath.Join(c.Directory, fmt.Sprintf("%s_frame_%d.png", c.ROMName, frame))
}

// Due reports whether a snapshot should be taken after the given frame.
func (c SnapshotConfig) Due(frame int) bool {
	return c.Enabled && frame%c.Interval == 0
}

// SaveFramePNG writes the frame to path as a PNG image.
func SaveFramePNG(frame *video.FrameBuffer, palette video.Palette, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, frame.Image(palette)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	slog.Debug("snapshot saved", "path", path)
	return nil
}

package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const progressInterval = 60

// RunHeadless runs the emulator for the given number of frames without a
// display, saving snapshots as configured. The last frame is always
// snapshotted when snapshots are enabled.
func RunHeadless(ctx context.Context, emu jeebie.Emulator, frames int, snapshots SnapshotConfig) error {
	if frames <= 0 {
		return fmt.Errorf("headless mode needs a positive frame count, got %d", frames)
	}
	slog.Info("running headless", "frames", frames, "snapshot_interval", snapshots.Interval, "snapshot_dir", snapshots.Directory)

	for n := 1; n <= frames; n++ {
		if err := ctx.Err(); err != nil {
			slog.Info("headless run interrupted", "completed", n-1)
			return nil
		}
		if err := emu.RunUntilFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		if snapshots.Due(n) || (snapshots.Enabled && n == frames) {
			if err := SaveFramePNG(emu.Frame(), video.DefaultPalette, snapshots.Path(n)); err != nil {
				return err
			}
		}
		if n%progressInterval == 0 {
			slog.Debug("frame progress", "completed", n, "total", frames)
		}
	}

	slog.Info("headless run completed", "frames", frames)
	return nil
}

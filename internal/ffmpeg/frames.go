package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"github.com/voslund/clipbench/pkg/timecode"
)

// FrameOptions configures single-frame extraction.
type FrameOptions struct {
	// Height scales the frame down preserving aspect; 0 keeps native size.
	Height int
	// Accurate seeks after demux for an exact frame instead of the nearest
	// keyframe. Slower, required for evenly spaced timeline thumbnails.
	Accurate bool
}

// ExtractFrame decodes one frame at the given timestamp into an image file.
// The output format follows the file extension (jpg/png).
func (e *Executor) ExtractFrame(ctx context.Context, input, output string, at time.Duration, opts FrameOptions) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}

	ts := timecode.FormatDuration(at)

	var args []string
	if opts.Accurate {
		// -ss after -i decodes up to the exact instant.
		args = []string{"-i", input, "-ss", ts}
	} else {
		args = []string{"-ss", ts, "-i", input}
	}

	args = append(args, "-frames:v", "1")
	if opts.Height > 0 {
		fb := NewFilterBuilder()
		args = append(args, "-vf", fb.Scale(-2, opts.Height).Build())
	}
	args = append(args, "-q:v", "2", output)

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("frame extraction at %s failed: %w", ts, err)
	}
	return nil
}

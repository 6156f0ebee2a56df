// Package thumbs produces evenly spaced preview frames for timeline
// visualization. Frames are extracted one at a time with accurate seeks and
// published in small batches so a UI can render partial progress.
package thumbs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/voslund/clipbench/internal/config"
	"github.com/voslund/clipbench/internal/ffmpeg"
	"github.com/voslund/clipbench/pkg/util"
)

// Frame is one extracted preview image tagged with its source instant and
// its normalized timeline position.
type Frame struct {
	Index    int
	Instant  float64 // source seconds
	Position float64 // i/(n-1), 0 for a single frame
	Path     string
}

// PublishFunc receives batches of freshly extracted frames in order.
type PublishFunc func(batch []Frame)

// Sampler extracts preview frames through the ffmpeg executor.
type Sampler struct {
	logger zerolog.Logger
	ff     *ffmpeg.Executor
	cfg    config.ThumbnailConfig
}

// NewSampler creates a thumbnail sampler.
func NewSampler(logger zerolog.Logger, ff *ffmpeg.Executor, cfg config.ThumbnailConfig) *Sampler {
	if cfg.Count <= 0 {
		cfg.Count = 20
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 4
	}
	return &Sampler{
		logger: logger.With().Str("component", "thumbs").Logger(),
		ff:     ff,
		cfg:    cfg,
	}
}

// Instants returns the n sample instants i*duration/n for i in 0..n-1.
func Instants(duration float64, n int) []float64 {
	if n <= 0 || duration <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(i) * duration / float64(n)
	}
	return out
}

// Position returns i/(n-1), the normalized timeline position of frame i.
func Position(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// Generate extracts count evenly spaced frames into outDir, publishing every
// batch as it completes. Individual frame failures are skipped; the result
// holds whatever decoded successfully, in order.
func (s *Sampler) Generate(ctx context.Context, source string, duration float64, count int, outDir string, publish PublishFunc) ([]Frame, error) {
	if count <= 0 {
		count = s.cfg.Count
	}
	instants := Instants(duration, count)
	if len(instants) == 0 {
		return nil, fmt.Errorf("nothing to sample: duration=%f count=%d", duration, count)
	}
	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	s.logger.Info().
		Str("source", source).
		Int("count", count).
		Msg("generating thumbnails")

	var frames []Frame
	var batch []Frame
	for i, instant := range instants {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		path := filepath.Join(outDir, fmt.Sprintf("thumb_%03d.jpg", i))
		err := s.ff.ExtractFrame(ctx, source, path, secondsToDuration(instant), ffmpeg.FrameOptions{
			Height:   s.cfg.Height,
			Accurate: true,
		})
		if err != nil {
			// Best effort: a single undecodable instant is not fatal.
			s.logger.Warn().Err(err).Float64("instant", instant).Msg("skipping thumbnail")
			continue
		}

		frame := Frame{
			Index:    i,
			Instant:  instant,
			Position: Position(i, count),
			Path:     path,
		}
		frames = append(frames, frame)
		batch = append(batch, frame)

		if len(batch) >= s.cfg.BatchSize {
			if publish != nil {
				publish(batch)
			}
			batch = nil
		}
	}

	if len(batch) > 0 && publish != nil {
		publish(batch)
	}

	// Skipping covers isolated decode failures; losing every frame means the
	// source or destination is unusable.
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames extracted from %s", source)
	}

	s.logger.Info().Int("frames", len(frames)).Msg("thumbnail generation complete")
	return frames, nil
}

// GenerateSingle extracts one full-resolution frame at the given instant,
// used for previews and frame analysis.
func (s *Sampler) GenerateSingle(ctx context.Context, source string, instant float64, output string) error {
	return s.ff.ExtractFrame(ctx, source, output, secondsToDuration(instant), ffmpeg.FrameOptions{
		Accurate: true,
	})
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

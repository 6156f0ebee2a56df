package session

import (
	"context"

	"github.com/voslund/clipbench/internal/export"
	"github.com/voslund/clipbench/internal/timeline"
)

// Export entry points. Each guards on the busy flag (mutual exclusion for
// the single shared composition), submits the job off the owner lock and
// funnels every job callback back through apply. On success the produced
// file replaces the loaded source.

// ExportTrim exports the current trim range.
func (s *Session) ExportTrim(ctx context.Context, output string) error {
	return s.startExport(ctx, func(tl timeline.Timeline, _ []timeline.TextOverlay, source string) export.Request {
		return export.Request{
			Op:     export.OpTrim,
			Source: source,
			Output: output,
			Start:  tl.TrimStart * tl.Duration,
			End:    tl.TrimEnd * tl.Duration,
		}
	})
}

// ExportSpeed exports the whole source retimed by multiplier.
func (s *Session) ExportSpeed(ctx context.Context, output string, multiplier float64) error {
	return s.startExport(ctx, func(_ timeline.Timeline, _ []timeline.TextOverlay, source string) export.Request {
		return export.Request{
			Op:     export.OpSpeedChange,
			Source: source,
			Output: output,
			Speed:  multiplier,
		}
	})
}

// ExportConcat exports the committed segments in list order.
func (s *Session) ExportConcat(ctx context.Context, output string) error {
	return s.startExport(ctx, func(tl timeline.Timeline, _ []timeline.TextOverlay, source string) export.Request {
		return export.Request{
			Op:       export.OpSegmentConcat,
			Source:   source,
			Output:   output,
			Segments: tl.Segments,
		}
	})
}

// ExportReverse exports the source reversed.
func (s *Session) ExportReverse(ctx context.Context, output string) error {
	return s.startExport(ctx, func(_ timeline.Timeline, _ []timeline.TextOverlay, source string) export.Request {
		return export.Request{
			Op:     export.OpReverse,
			Source: source,
			Output: output,
		}
	})
}

// ExportBurn burns the current overlays into the video.
func (s *Session) ExportBurn(ctx context.Context, output string) error {
	return s.startExport(ctx, func(_ timeline.Timeline, overlays []timeline.TextOverlay, source string) export.Request {
		return export.Request{
			Op:       export.OpTextBurn,
			Source:   source,
			Output:   output,
			Overlays: overlays,
		}
	})
}

func (s *Session) startExport(ctx context.Context, build func(timeline.Timeline, []timeline.TextOverlay, string) export.Request) error {
	var req export.Request
	err := s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		if s.busy {
			return ErrBusy
		}
		snap := s.snapshotLocked()
		req = build(snap.Timeline, snap.Overlays, s.source)
		s.busy = true
		s.progress = 0
		s.errMsg = ""
		s.status = "exporting"
		return nil
	})
	if err != nil {
		return err
	}

	s.runner.Submit(ctx, req, func(job export.Job) {
		s.onJobUpdate(ctx, job)
	})
	return nil
}

// onJobUpdate marshals job callbacks back into the owner funnel. A completed
// job's output becomes the new source.
func (s *Session) onJobUpdate(ctx context.Context, job export.Job) {
	_ = s.apply(func() error {
		s.progress = job.Progress
		switch job.Status {
		case export.StatusCompleted:
			s.busy = false
			s.status = "export complete"
		case export.StatusFailed:
			s.busy = false
			s.status = "export failed"
			if job.Err != nil {
				s.errMsg = job.Err.Error()
			}
		}
		return nil
	})

	if job.Status == export.StatusCompleted {
		if err := s.Load(ctx, job.Output); err != nil {
			s.logger.Error().Err(err).Str("output", job.Output).Msg("failed to reload exported output")
		}
	}
}

// Package export turns a timeline into an output media file. It owns the
// ExportJob state machine, the per-operation orchestration and the reverse
// strategy selection; all encoding is delegated to ffmpeg subprocesses.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/voslund/clipbench/internal/compose"
	"github.com/voslund/clipbench/internal/config"
	"github.com/voslund/clipbench/internal/ffmpeg"
	"github.com/voslund/clipbench/internal/timeline"
	"github.com/voslund/clipbench/pkg/timecode"
	"github.com/voslund/clipbench/pkg/util"
)

// concatAssemblyWeight is the share of total progress attributed to placing
// segments on the output timeline; the encode pass reports the remainder.
const concatAssemblyWeight = 0.9

// Request describes one export operation. Only the fields relevant to Op
// are consulted.
type Request struct {
	Op     Operation
	Source string
	Output string

	// Trim
	Start float64 // seconds
	End   float64 // seconds

	// SpeedChange
	Speed float64

	// SegmentConcat
	Segments []timeline.Segment

	// TextBurn
	Overlays []timeline.TextOverlay
}

// Service runs export operations against an ffmpeg executor.
type Service struct {
	logger zerolog.Logger
	ff     *ffmpeg.Executor
	cfg    *config.Config
}

// NewService creates an export service.
func NewService(logger zerolog.Logger, ff *ffmpeg.Executor, cfg *config.Config) *Service {
	return &Service{
		logger: logger.With().Str("component", "export").Logger(),
		ff:     ff,
		cfg:    cfg,
	}
}

// Submit starts the request on a new goroutine and returns its job. The
// notify callback observes every state change, ending with a terminal one.
func (s *Service) Submit(ctx context.Context, req Request, notify func(Job)) *Job {
	job := newJob(req.Op, req.Source, req.Output, notify)
	go func() {
		job.start()
		if err := s.Run(ctx, req, job.setProgress); err != nil {
			s.logger.Error().Err(err).Str("op", string(req.Op)).Msg("export failed")
			job.fail(err)
			return
		}
		job.complete()
	}()
	return job
}

// Run executes the request synchronously, reporting fractional progress.
// Output is written to a temp file next to the target and moved into place
// only on success, so no partial output survives a failure.
func (s *Service) Run(ctx context.Context, req Request, progress func(float64)) error {
	if progress == nil {
		progress = func(float64) {}
	}
	if req.Source == "" || req.Output == "" {
		return fmt.Errorf("source and output paths are required")
	}

	info, err := s.ff.ProbeVideo(ctx, req.Source)
	if err != nil {
		return fmt.Errorf("failed to probe source: %w", err)
	}
	if !info.HasVideo {
		return ErrNoVideoTrack
	}

	tmp, err := util.TempFile(filepath.Dir(req.Output), ".clipbench-", util.GetExtension(req.Output))
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	s.logger.Info().
		Str("op", string(req.Op)).
		Str("source", req.Source).
		Str("duration", timecode.FormatSeconds(info.Seconds())).
		Str("output", req.Output).
		Msg("starting export")

	err = s.dispatch(ctx, req, info, tmpPath, progress)
	if err == nil && !util.NonEmptyFile(tmpPath) {
		err = ErrExportFailed
	}
	if err != nil {
		util.CleanupFiles(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, req.Output); err != nil {
		util.CleanupFiles(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	s.logger.Info().Str("output", req.Output).Msg("export complete")
	return nil
}

func (s *Service) dispatch(ctx context.Context, req Request, info *ffmpeg.VideoInfo, out string, progress func(float64)) error {
	switch req.Op {
	case OpTrim:
		if req.End <= req.Start || req.Start < 0 || req.End > info.Seconds() {
			return timeline.ErrInvalidRange
		}
		plan := compose.SingleRange(req.Source, info.HasAudio, req.Start, req.End, 1)
		return s.encodePlan(ctx, plan, out, 0, 1, progress)

	case OpSpeedChange:
		if req.Speed <= 0 {
			return timeline.ErrInvalidSpeed
		}
		plan := compose.SingleRange(req.Source, info.HasAudio, 0, info.Seconds(), req.Speed)
		return s.encodePlan(ctx, plan, out, 0, 1, progress)

	case OpSegmentConcat:
		plan, err := compose.FromSegments(req.Source, info.HasAudio, req.Segments)
		if err != nil {
			return err
		}
		// Assembly phase: walk the output cursor over the placements.
		placements := plan.Placements()
		for i := range placements {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			progress(concatAssemblyWeight * float64(i+1) / float64(len(placements)))
		}
		return s.encodePlan(ctx, plan, out, concatAssemblyWeight, 1-concatAssemblyWeight, progress)

	case OpTextBurn:
		return s.burnText(ctx, req, info, out, progress)

	case OpReverse:
		return s.reverse(ctx, req.Source, info, out, progress)

	default:
		return fmt.Errorf("unknown operation %q", req.Op)
	}
}

// encodePlan renders a composition plan, mapping encoder time onto the
// [base, base+span] slice of total progress.
func (s *Service) encodePlan(ctx context.Context, plan *compose.Plan, out string, base, span float64, progress func(float64)) error {
	graph, err := plan.FilterComplex()
	if err != nil {
		return err
	}

	args := []string{
		"-i", plan.Source,
		"-filter_complex", graph,
		"-map", "[outv]",
	}
	if plan.WithAudio {
		args = append(args, "-map", "[outa]")
	}
	args = append(args, s.codecArgs(plan.WithAudio)...)
	args = append(args, out)

	expected := plan.OutputDuration()
	runOpts := ffmpeg.RunOptions{
		Args:            args,
		ProgressHandler: encodeProgress(expected, base, span, progress),
		LogHandler: func(line string) {
			s.logger.Debug().Str("ffmpeg", line).Msg("composition encode")
		},
	}

	if err := s.ff.Run(ctx, runOpts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

func (s *Service) burnText(ctx context.Context, req Request, info *ffmpeg.VideoInfo, out string, progress func(float64)) error {
	if len(req.Overlays) == 0 {
		return fmt.Errorf("no overlays to burn")
	}
	for _, o := range req.Overlays {
		if o.Start >= o.End || o.Start < 0 || o.End > info.Seconds() {
			return timeline.ErrInvalidWindow
		}
	}

	fb := ffmpeg.NewFilterBuilder()
	for _, f := range compose.DrawtextFilters(req.Overlays, s.cfg.Text.FontFile, s.cfg.Text.FadeSecs) {
		fb.Custom(f)
	}

	args := []string{
		"-i", req.Source,
		"-vf", fb.Build(),
	}
	args = append(args, s.codecArgs(false)...)
	if info.HasAudio {
		// Overlay burn-in never touches the audio stream.
		args = append(args, "-c:a", "copy")
	}
	args = append(args, out)

	runOpts := ffmpeg.RunOptions{
		Args:            args,
		ProgressHandler: encodeProgress(info.Seconds(), 0, 1, progress),
		LogHandler: func(line string) {
			s.logger.Debug().Str("ffmpeg", line).Msg("text burn-in")
		},
	}

	if err := s.ff.Run(ctx, runOpts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// codecArgs returns the configured encode settings.
func (s *Service) codecArgs(withAudio bool) []string {
	args := []string{
		"-c:v", s.cfg.Export.VideoCodec,
		"-crf", fmt.Sprintf("%d", s.cfg.Export.CRF),
		"-preset", s.cfg.Export.Preset,
	}
	if withAudio {
		args = append(args, "-c:a", s.cfg.Export.AudioCodec)
	}
	return args
}

// encodeProgress maps encoder-reported output time onto a progress slice.
func encodeProgress(expectedSecs, base, span float64, progress func(float64)) ffmpeg.ProgressFunc {
	if expectedSecs <= 0 {
		return nil
	}
	return func(p *ffmpeg.Progress) {
		frac := p.Seconds() / expectedSecs
		if frac > 1 {
			frac = 1
		}
		if frac > 0 {
			progress(base + span*frac)
		}
	}
}

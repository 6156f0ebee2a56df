package export

import (
	"context"
	"fmt"
	"os"

	"github.com/voslund/clipbench/internal/ffmpeg"
	"github.com/voslund/clipbench/pkg/util"
)

// reverser is the strategy for reversing a source. The fast path shells out
// to a standalone encoder with reverse filters; the fallback re-feeds every
// decoded sample in reverse order. Selection is a capability probe, not a
// quality choice.
type reverser interface {
	reverse(ctx context.Context, source string, info *ffmpeg.VideoInfo, output string, progress func(float64)) error
}

func (s *Service) reverse(ctx context.Context, source string, info *ffmpeg.VideoInfo, output string, progress func(float64)) error {
	var r reverser
	if binary, err := probeFastEncoder(s.cfg.Reverse.CandidatePaths); err == nil {
		s.logger.Info().Str("binary", binary).Msg("using fast reverse encoder")
		r = &fastReverser{svc: s, binary: binary}
	} else {
		s.logger.Warn().Msg("no fast reverse encoder found, falling back to sample reversal")
		r = &sampleReverser{svc: s}
	}
	return r.reverse(ctx, source, info, output, progress)
}

// probeFastEncoder returns the first candidate path that exists.
func probeFastEncoder(candidates []string) (string, error) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", ErrEncoderUnavailable
}

// fastReverser invokes a standalone encoder with reverse filters and a fast
// low-quality preset. Both streams are reversed in one pass.
type fastReverser struct {
	svc    *Service
	binary string
}

func (r *fastReverser) reverse(ctx context.Context, source string, info *ffmpeg.VideoInfo, output string, progress func(float64)) error {
	args := []string{
		"-i", source,
		"-vf", "reverse",
	}
	if info.HasAudio {
		args = append(args, "-af", "areverse")
	}
	args = append(args,
		"-c:v", r.svc.cfg.Export.VideoCodec,
		"-crf", fmt.Sprintf("%d", r.svc.cfg.Export.CRF),
		"-preset", "ultrafast",
	)
	if info.HasAudio {
		args = append(args, "-c:a", r.svc.cfg.Export.AudioCodec)
	}
	args = append(args, output)

	runOpts := ffmpeg.RunOptions{
		Args: args,
		// Stderr is only a liveness/progress heuristic here, never parsed
		// structurally beyond the timestamp.
		ProgressHandler: encodeProgress(info.Seconds(), 0, 1, progress),
		LogHandler: func(line string) {
			r.svc.logger.Debug().Str("ffmpeg", line).Msg("fast reverse")
		},
	}

	if err := r.svc.ff.RunBinary(ctx, r.binary, runOpts); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// sampleReverser decodes every frame and audio sample into memory,
// re-timestamps them by emission order and feeds them to the encoder in
// reverse. O(total sample count) memory; last resort by design.
type sampleReverser struct {
	svc *Service
}

func (r *sampleReverser) reverse(ctx context.Context, source string, info *ffmpeg.VideoInfo, output string, progress func(float64)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The decoder autorotates, so a 90/270 display matrix yields transposed
	// rasters. Reading and encoding at the display dimensions bakes the
	// orientation in; every frame byte keeps its stride.
	width, height := info.DisplayDimensions()

	frames, err := r.svc.ff.ReadAllFrames(ctx, source, width, height)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if len(frames) == 0 {
		return ErrNoVideoTrack
	}

	var audioPath string
	sampleRate, channels := info.SampleRate, info.Channels
	if info.HasAudio {
		if sampleRate == 0 {
			sampleRate = 44100
		}
		if channels == 0 {
			channels = 2
		}
		pcm, err := r.svc.ff.ReadAudioPCM(ctx, source, sampleRate, channels)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		audioPath, err = writeTempPCM(r.svc.cfg.TempDir, reversePCM(pcm, 2*channels))
		if err != nil {
			return err
		}
		defer util.CleanupFiles(audioPath)
	}

	fps := info.FPS
	if fps <= 0 {
		fps = 30
	}

	sess, err := r.svc.ff.StartRawEncode(ctx, ffmpeg.RawEncodeOptions{
		Width:      width,
		Height:     height,
		FPS:        fps,
		AudioPath:  audioPath,
		SampleRate: sampleRate,
		Channels:   channels,
		VideoCodec: r.svc.cfg.Export.VideoCodec,
		AudioCodec: r.svc.cfg.Export.AudioCodec,
		CRF:        r.svc.cfg.Export.CRF,
		Preset:     "ultrafast",
		Output:     output,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	// One-slot rendezvous between the sample producer and the encoder
	// feed: the producer blocks until the consumer is ready for the next
	// frame, so at most one frame is in flight.
	ready := make(chan []byte)
	go func() {
		defer close(ready)
		for i := len(frames) - 1; i >= 0; i-- {
			select {
			case ready <- frames[i]:
			case <-ctx.Done():
				return
			}
		}
	}()

	written := 0
	var feedErr error
	for frame := range ready {
		if _, err := sess.Stdin.Write(frame); err != nil {
			feedErr = err
			cancel()
			break
		}
		written++
		progress(float64(written) / float64(len(frames)))
	}

	if err := sess.Wait(); err != nil {
		if feedErr != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, feedErr)
		}
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if feedErr != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, feedErr)
	}

	r.svc.logger.Info().Int("frames", written).Msg("sample reversal complete")
	return nil
}

// reversePCM reverses interleaved PCM data in whole sample frames,
// dropping any trailing partial frame.
func reversePCM(data []byte, frameBytes int) []byte {
	if frameBytes <= 0 {
		return nil
	}
	n := len(data) / frameBytes
	out := make([]byte, 0, n*frameBytes)
	for i := n - 1; i >= 0; i-- {
		out = append(out, data[i*frameBytes:(i+1)*frameBytes]...)
	}
	return out
}

func writeTempPCM(dir string, data []byte) (string, error) {
	f, err := util.TempFile(dir, "clipbench-pcm-", ".raw")
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		util.CleanupFiles(f.Name())
		return "", fmt.Errorf("failed to write temp audio: %w", err)
	}
	if err := f.Close(); err != nil {
		util.CleanupFiles(f.Name())
		return "", err
	}
	return f.Name(), nil
}

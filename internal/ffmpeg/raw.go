package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Raw media plumbing for the in-process reverse fallback: every video frame
// and audio sample is pulled into memory, re-ordered by the caller and fed
// back into an encoder over stdin.

// FrameSizeYUV420 returns the byte size of one yuv420p frame.
func FrameSizeYUV420(width, height int) int {
	return width * height * 3 / 2
}

// ReadAllFrames decodes the whole video stream into yuv420p frames held in
// memory. O(frame count) memory; last-resort path only.
func (e *Executor) ReadAllFrames(ctx context.Context, input string, width, height int) ([][]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}

	args := []string{
		"-i", input,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	frameSize := FrameSizeYUV420(width, height)
	var frames [][]byte
	for {
		frame := make([]byte, frameSize)
		_, err := io.ReadFull(stdout, frame)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			// Trailing partial frame, drop it.
			break
		}
		if err != nil {
			_ = cmd.Wait()
			return nil, fmt.Errorf("failed to read frame %d: %w", len(frames), err)
		}
		frames = append(frames, frame)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("raw decode failed: %w (%s)", err, stderr.String())
	}

	e.logger.Debug().Int("frames", len(frames)).Msg("raw video decode complete")
	return frames, nil
}

// ReadAudioPCM decodes the audio stream into interleaved s16le samples.
func (e *Executor) ReadAudioPCM(ctx context.Context, input string, sampleRate, channels int) ([]byte, error) {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", input,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	data, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("audio decode failed: %w (%s)", err, stderr.String())
	}

	e.logger.Debug().Int("bytes", len(data)).Msg("raw audio decode complete")
	return data, nil
}

// RawEncodeOptions describes the encoder input for an in-memory re-feed:
// yuv420p frames over stdin plus an optional pre-written PCM file.
type RawEncodeOptions struct {
	Width      int
	Height     int
	FPS        float64
	AudioPath  string // raw s16le file; empty for video-only
	SampleRate int
	Channels   int
	VideoCodec string
	AudioCodec string
	CRF        int
	Preset     string
	Output     string
}

// RawEncodeSession is a running encoder accepting raw frames on Stdin.
type RawEncodeSession struct {
	Stdin  io.WriteCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
}

// Wait closes stdin if still open and waits for the encoder to finish.
func (s *RawEncodeSession) Wait() error {
	_ = s.Stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("raw encode failed: %w (%s)", err, s.stderr.String())
	}
	return nil
}

// StartRawEncode launches an encoder that reads yuv420p frames from stdin.
func (e *Executor) StartRawEncode(ctx context.Context, opts RawEncodeOptions) (*RawEncodeSession, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid raw encode geometry")
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%.6f", opts.FPS),
		"-i", "pipe:0",
	}

	if opts.AudioPath != "" {
		args = append(args,
			"-f", "s16le",
			"-ar", fmt.Sprintf("%d", opts.SampleRate),
			"-ac", fmt.Sprintf("%d", opts.Channels),
			"-i", opts.AudioPath,
			"-c:a", opts.AudioCodec,
			"-shortest",
		)
	}

	args = append(args,
		"-c:v", opts.VideoCodec,
		"-crf", fmt.Sprintf("%d", opts.CRF),
		"-preset", opts.Preset,
		"-pix_fmt", "yuv420p",
		opts.Output,
	)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start encoder: %w", err)
	}

	e.logger.Debug().
		Int("width", opts.Width).
		Int("height", opts.Height).
		Float64("fps", opts.FPS).
		Msg("raw encode started")

	return &RawEncodeSession{Stdin: stdin, cmd: cmd, stderr: &stderr}, nil
}

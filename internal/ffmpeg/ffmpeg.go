// Package ffmpeg wraps ffmpeg/ffprobe subprocess invocation: argument
// building, stderr progress streaming and stream metadata probing. Higher
// layers decide what to encode; this package only runs it.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voslund/clipbench/internal/config"
)

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates a new ffmpeg executor. Empty paths in cfg fall back to PATH
// lookup.
func New(logger zerolog.Logger, cfg config.FFmpegConfig) (*Executor, error) {
	ffmpegPath := cfg.BinaryPath
	if ffmpegPath == "" {
		p, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
		ffmpegPath = p
	}

	ffprobePath := cfg.ProbePath
	if ffprobePath == "" {
		p, err := exec.LookPath("ffprobe")
		if err != nil {
			return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
		}
		ffprobePath = p
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     cfg.Threads,
	}, nil
}

// Path returns the resolved ffmpeg binary path.
func (e *Executor) Path() string {
	return e.ffmpegPath
}

// Run executes ffmpeg with the given arguments and streams progress
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	return e.RunBinary(ctx, e.ffmpegPath, opts)
}

// RunBinary executes a specific ffmpeg binary. The reverse fast path probes
// for standalone installs outside PATH and runs them through here.
func (e *Executor) RunBinary(ctx context.Context, binary string, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	baseArgs := []string{"-y", "-hide_banner", "-loglevel", "info"}

	if e.threads > 0 {
		baseArgs = append(baseArgs, "-threads", fmt.Sprintf("%d", e.threads))
	}

	baseArgs = append(baseArgs, "-stats")
	args := append(baseArgs, opts.Args...)

	e.logger.Debug().
		Str("cmd", binary).
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, binary, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Stream stderr (progress + logs)
	go func() {
		defer wg.Done()
		streamOutput(stderr, opts.ProgressHandler, opts.LogHandler)
	}()

	// Stream stdout
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if opts.LogHandler != nil {
				opts.LogHandler(scanner.Text())
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// streamOutput parses ffmpeg stderr and calls handlers. Stats lines pack
// several key=value pairs on one carriage-return-terminated line.
func streamOutput(r io.Reader, progressHandler ProgressFunc, logHandler func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanStatsLines)

	for scanner.Scan() {
		line := scanner.Text()

		if logHandler != nil {
			logHandler(line)
		}

		if p, ok := parseStatsLine(line); ok && progressHandler != nil {
			progressHandler(p)
		}
	}
}

// parseStatsLine extracts progress fields from an ffmpeg -stats line like
// "frame=  120 fps= 30 ... time=00:00:04.00 bitrate=... speed=1.2x".
func parseStatsLine(line string) (*Progress, bool) {
	if !strings.Contains(line, "time=") {
		return nil, false
	}

	p := &Progress{}
	// Normalize "key=  value" to "key=value" before splitting on spaces.
	compact := line
	for strings.Contains(compact, "= ") {
		compact = strings.ReplaceAll(compact, "= ", "=")
	}

	for _, field := range strings.Fields(compact) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "frame":
			fmt.Sscanf(kv[1], "%d", &p.Frame)
		case "fps":
			fmt.Sscanf(kv[1], "%f", &p.FPS)
		case "bitrate":
			p.Bitrate = kv[1]
		case "time", "out_time":
			p.Time = kv[1]
		case "speed":
			p.Speed = kv[1]
		}
	}

	if p.Time == "" {
		return nil, false
	}
	return p, true
}

// scanStatsLines splits on \n and \r so in-place stats updates are seen as
// separate lines.
func scanStatsLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voslund/clipbench/internal/config"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	e, err := New(logger, config.FFmpegConfig{Threads: 4})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if e.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if e.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
}

func TestExecutorBinaryOverride(t *testing.T) {
	skipIfNoFFmpeg(t)

	real, _ := exec.LookPath("ffmpeg")
	logger := zerolog.New(os.Stderr)
	e, err := New(logger, config.FFmpegConfig{BinaryPath: real})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if e.Path() != real {
		t.Errorf("expected binary path %q, got %q", real, e.Path())
	}
}

func TestProbeVideoInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	e, err := New(logger, config.FFmpegConfig{})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()

	_, err = e.ProbeVideo(ctx, "nonexistent.mp4")
	if err == nil {
		t.Error("ProbeVideo should fail for non-existent file")
	}

	invalidPath := t.TempDir() + "/invalid.txt"
	os.WriteFile(invalidPath, []byte("not a video"), 0644)

	info, err := e.ProbeVideo(ctx, invalidPath)
	if err == nil && info.HasVideo {
		t.Error("ProbeVideo should not report a video stream for junk input")
	}
}

func TestParseStatsLine(t *testing.T) {
	line := "frame=  213 fps= 30 q=28.0 size=     512KiB time=00:00:07.10 bitrate= 590.6kbits/s speed=1.42x"
	p, ok := parseStatsLine(line)
	if !ok {
		t.Fatal("expected stats line to parse")
	}
	if p.Frame != 213 {
		t.Errorf("frame: got %d, want 213", p.Frame)
	}
	if p.FPS != 30 {
		t.Errorf("fps: got %f, want 30", p.FPS)
	}
	if p.Time != "00:00:07.10" {
		t.Errorf("time: got %q", p.Time)
	}
	if sec := p.Seconds(); sec < 7.09 || sec > 7.11 {
		t.Errorf("seconds: got %f, want ~7.10", sec)
	}
	if p.Speed != "1.42x" {
		t.Errorf("speed: got %q", p.Speed)
	}
}

func TestParseStatsLineIgnoresNoise(t *testing.T) {
	for _, line := range []string{
		"",
		"Stream mapping:",
		"Output #0, mp4, to 'out.mp4':",
		"frame=   10 fps=0.0 q=0.0",
	} {
		if _, ok := parseStatsLine(line); ok {
			t.Errorf("line %q should not parse as progress", line)
		}
	}
}

func TestParseStatsLineNATime(t *testing.T) {
	p, ok := parseStatsLine("size= 0KiB time=N/A bitrate=N/A speed=N/A")
	if !ok {
		t.Fatal("expected line with time= to parse")
	}
	if sec := p.Seconds(); sec != 0 {
		t.Errorf("N/A time should report 0 seconds, got %f", sec)
	}
}

func TestFilterBuilder(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.Scale(1920, 1080).FPS(30).Build()

	expected := "scale=1920:1080,fps=30.000000"
	if filter != expected {
		t.Errorf("expected %q, got %q", expected, filter)
	}
}

func TestFilterBuilderAspectScale(t *testing.T) {
	fb := NewFilterBuilder()
	filter := fb.Scale(-2, 90).Build()
	if filter != "scale=-2:90" {
		t.Errorf("expected scale=-2:90, got %q", filter)
	}
}

func TestFilterBuilderEmpty(t *testing.T) {
	fb := NewFilterBuilder()
	if filter := fb.Build(); filter != "" {
		t.Errorf("expected empty string, got %q", filter)
	}
	if filter := fb.Scale(0, 90).Build(); filter != "" {
		t.Errorf("zero dimension should be skipped, got %q", filter)
	}
}

func TestFrameSizeYUV420(t *testing.T) {
	if size := FrameSizeYUV420(320, 240); size != 115200 {
		t.Errorf("expected 115200, got %d", size)
	}
}

func TestDisplayDimensions(t *testing.T) {
	info := VideoInfo{Width: 1920, Height: 1080}
	for _, rot := range []int{0, 180} {
		info.Rotation = rot
		w, h := info.DisplayDimensions()
		if w != 1920 || h != 1080 {
			t.Errorf("rotation %d: got %dx%d, want 1920x1080", rot, w, h)
		}
	}
	for _, rot := range []int{90, 270} {
		info.Rotation = rot
		w, h := info.DisplayDimensions()
		if w != 1080 || h != 1920 {
			t.Errorf("rotation %d: got %dx%d, want 1080x1920", rot, w, h)
		}
	}
}

func TestStreamRotation(t *testing.T) {
	var s probeStream
	s.Tags.Rotate = "90"
	if got := streamRotation(s); got != 90 {
		t.Errorf("tag rotation: got %d, want 90", got)
	}

	var m probeStream
	m.SideDataList = append(m.SideDataList, struct {
		Rotation float64 `json:"rotation"`
	}{Rotation: -90})
	if got := streamRotation(m); got != 270 {
		t.Errorf("matrix rotation: got %d, want 270", got)
	}

	if got := streamRotation(probeStream{}); got != 0 {
		t.Errorf("no rotation: got %d, want 0", got)
	}
}

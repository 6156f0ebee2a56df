package thumbs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voslund/clipbench/internal/config"
	"github.com/voslund/clipbench/internal/ffmpeg"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestInstantsEvenSpacing(t *testing.T) {
	got := Instants(10, 5)
	require.Len(t, got, 5)
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, got)
}

func TestInstantsDegenerate(t *testing.T) {
	assert.Nil(t, Instants(10, 0))
	assert.Nil(t, Instants(0, 5))
	assert.Equal(t, []float64{0}, Instants(10, 1))
}

func TestPosition(t *testing.T) {
	assert.Equal(t, 0.0, Position(0, 5))
	assert.Equal(t, 0.25, Position(1, 5))
	assert.Equal(t, 1.0, Position(4, 5))
	// A single frame sits at position zero.
	assert.Equal(t, 0.0, Position(0, 1))
}

func TestGenerateRejectsUnusableOutDir(t *testing.T) {
	// The directory check fires before any extraction is attempted.
	s := NewSampler(zerolog.Nop(), nil, config.ThumbnailConfig{})

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	outDir := filepath.Join(blocker, "thumbs")

	frames, err := s.Generate(context.Background(), "in.mp4", 10, 5, outDir, nil)
	assert.Error(t, err)
	assert.Empty(t, frames)
}

func TestGenerateErrorsWhenAllFramesFail(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	ff, err := ffmpeg.New(logger, config.FFmpegConfig{})
	require.NoError(t, err)

	s := NewSampler(logger, ff, config.ThumbnailConfig{Height: 90})
	frames, err := s.Generate(context.Background(), "does-not-exist.mp4", 10, 3, t.TempDir(), nil)
	assert.Error(t, err)
	assert.Empty(t, frames)
}

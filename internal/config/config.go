package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/voslund/clipbench/pkg/util"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	TempDir string `yaml:"temp_dir"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Export settings
	Export ExportConfig `yaml:"export"`

	// Reverse fast-path settings
	Reverse ReverseConfig `yaml:"reverse"`

	// Thumbnail settings
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`

	// Text burn-in settings
	Text TextConfig `yaml:"text"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

type ExportConfig struct {
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
	CRF        int    `yaml:"crf"`
	Preset     string `yaml:"preset"`
}

// ReverseConfig lists where a standalone encoder binary may live for the
// fast reverse path. Desktop installs rarely have it on PATH, hence the
// fixed candidate list.
type ReverseConfig struct {
	CandidatePaths []string `yaml:"candidate_paths"`
}

type ThumbnailConfig struct {
	Count     int `yaml:"count"`
	Height    int `yaml:"height"`
	BatchSize int `yaml:"batch_size"`
}

type TextConfig struct {
	FontFile string  `yaml:"font_file"`
	FadeSecs float64 `yaml:"fade_secs"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		TempDir: os.TempDir(),
		FFmpeg: FFmpegConfig{
			BinaryPath: "",
			ProbePath:  "",
			Threads:    0,
		},
		Export: ExportConfig{
			VideoCodec: "libx264",
			AudioCodec: "aac",
			CRF:        23,
			Preset:     "medium",
		},
		Reverse: ReverseConfig{
			CandidatePaths: []string{
				"/opt/homebrew/bin/ffmpeg",
				"/usr/local/bin/ffmpeg",
				"/usr/bin/ffmpeg",
			},
		},
		Thumbnails: ThumbnailConfig{
			Count:     20,
			Height:    90,
			BatchSize: 4,
		},
		Text: TextConfig{
			FontFile: "",
			FadeSecs: 0.3,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./clipbench.yaml",
		"./clipbench.yml",
		filepath.Join(os.Getenv("HOME"), ".clipbench", "config.yaml"),
	}

	for _, path := range candidates {
		if util.FileExists(path) {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}

package ffmpeg

import (
	"time"

	"github.com/voslund/clipbench/pkg/timecode"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath     string
	Duration     time.Duration
	Width        int
	Height       int
	FPS          float64
	Rotation     int // display rotation in degrees, 0/90/180/270
	Bitrate      int64
	VideoCodec   string
	HasVideo     bool
	HasAudio     bool
	AudioCodec   string
	SampleRate   int
	Channels     int
	AudioBitrate int64
}

// Seconds returns the source duration as a float, the unit the timeline
// model works in.
func (v *VideoInfo) Seconds() float64 {
	return v.Duration.Seconds()
}

// DisplayDimensions returns the frame size after the display rotation is
// applied. Autorotating decoders emit frames at these dimensions, not the
// coded Width x Height.
func (v *VideoInfo) DisplayDimensions() (width, height int) {
	if v.Rotation == 90 || v.Rotation == 270 {
		return v.Height, v.Width
	}
	return v.Width, v.Height
}

// Progress represents ffmpeg progress data parsed from stderr
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// Seconds returns the encoded output position, or 0 when the time field has
// not been reported yet.
func (p *Progress) Seconds() float64 {
	if p.Time == "" || p.Time == "N/A" {
		return 0
	}
	d, err := timecode.ParseTimestamp(p.Time)
	if err != nil {
		return 0
	}
	return d.Seconds()
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

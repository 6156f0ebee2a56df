// Package timeline holds the editing-session model: the trim range and
// playhead over the loaded source, the ordered speed segments that define the
// export concatenation, and the timed text overlays. It is pure state; all
// media work lives behind the export service.
package timeline

import (
	"math"

	"github.com/google/uuid"

	"github.com/voslund/clipbench/pkg/timecode"
)

// Segment is a user-committed source time range with an attached playback
// speed. Order within Timeline.Segments is the output concatenation order.
type Segment struct {
	ID    string
	Start float64 // source seconds
	End   float64 // source seconds, > Start
	Speed float64 // positive multiplier
}

// Duration returns the source-side length of the segment in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// AdjustedDuration returns the output-side length after speed retiming.
func (s Segment) AdjustedDuration() float64 {
	return s.Duration() / s.Speed
}

// Timeline is the per-source editing state. Playhead and trim bounds are
// normalized against the source duration. A fresh timeline starts with the
// playhead centered and the whole source selected.
type Timeline struct {
	Duration  float64 // source duration in seconds
	Playhead  float64 // normalized 0..1
	TrimStart float64 // normalized 0..1
	TrimEnd   float64 // normalized 0..1
	Segments  []Segment
}

// New creates a timeline for a source of the given duration.
func New(duration float64) *Timeline {
	return &Timeline{
		Duration:  duration,
		Playhead:  0.5,
		TrimStart: 0,
		TrimEnd:   1,
	}
}

// SetTrimStart clamps pos into [0, trimEnd]. Clamping against the opposite
// bound keeps the selection well-formed instead of silently inverting it.
func (t *Timeline) SetTrimStart(pos float64) {
	pos = timecode.Clamp01(pos)
	if pos > t.TrimEnd {
		pos = t.TrimEnd
	}
	t.TrimStart = pos
}

// SetTrimEnd clamps pos into [trimStart, 1].
func (t *Timeline) SetTrimEnd(pos float64) {
	pos = timecode.Clamp01(pos)
	if pos < t.TrimStart {
		pos = t.TrimStart
	}
	t.TrimEnd = pos
}

// SetPlayhead clamps pos into [0, 1]. When snapCount > 0 the position snaps
// to the nearest thumbnail boundary (multiples of 1/snapCount).
func (t *Timeline) SetPlayhead(pos float64, snapCount int) {
	pos = timecode.Clamp01(pos)
	if snapCount > 0 {
		step := 1.0 / float64(snapCount)
		pos = timecode.Clamp01(math.Round(pos/step) * step)
	}
	t.Playhead = pos
}

// PlayheadSeconds returns the playhead position in source seconds.
func (t *Timeline) PlayheadSeconds() float64 {
	return t.Playhead * t.Duration
}

// AddSegment commits the current trim range as a segment and resets the trim
// selection to the whole source.
func (t *Timeline) AddSegment(speed float64) (Segment, error) {
	if speed <= 0 {
		return Segment{}, ErrInvalidSpeed
	}
	if t.TrimStart >= t.TrimEnd {
		return Segment{}, ErrInvalidRange
	}
	seg := Segment{
		ID:    uuid.NewString(),
		Start: t.TrimStart * t.Duration,
		End:   t.TrimEnd * t.Duration,
		Speed: speed,
	}
	t.Segments = append(t.Segments, seg)
	t.resetTrim()
	return seg, nil
}

// SplitAtPlayhead commits the trim range as two adjacent segments split at
// the playhead. The playhead must lie strictly inside the trim range.
func (t *Timeline) SplitAtPlayhead(speed float64) (Segment, Segment, error) {
	if speed <= 0 {
		return Segment{}, Segment{}, ErrInvalidSpeed
	}
	if t.Playhead <= t.TrimStart || t.Playhead >= t.TrimEnd {
		return Segment{}, Segment{}, ErrInvalidRange
	}
	first := Segment{
		ID:    uuid.NewString(),
		Start: t.TrimStart * t.Duration,
		End:   t.Playhead * t.Duration,
		Speed: speed,
	}
	second := Segment{
		ID:    uuid.NewString(),
		Start: t.Playhead * t.Duration,
		End:   t.TrimEnd * t.Duration,
		Speed: speed,
	}
	t.Segments = append(t.Segments, first, second)
	t.resetTrim()
	return first, second, nil
}

// DeleteSegment removes the segment at index. Out-of-range indexes are
// silent no-ops so UI affordances never have to pre-validate.
func (t *Timeline) DeleteSegment(index int) {
	if index < 0 || index >= len(t.Segments) {
		return
	}
	t.Segments = append(t.Segments[:index], t.Segments[index+1:]...)
}

// MoveSegmentUp swaps the segment at index with its predecessor.
func (t *Timeline) MoveSegmentUp(index int) {
	if index <= 0 || index >= len(t.Segments) {
		return
	}
	t.Segments[index-1], t.Segments[index] = t.Segments[index], t.Segments[index-1]
}

// MoveSegmentDown swaps the segment at index with its successor.
func (t *Timeline) MoveSegmentDown(index int) {
	if index < 0 || index >= len(t.Segments)-1 {
		return
	}
	t.Segments[index], t.Segments[index+1] = t.Segments[index+1], t.Segments[index]
}

// SetSegmentSpeed updates the speed of the segment at index in place.
func (t *Timeline) SetSegmentSpeed(index int, speed float64) error {
	if index < 0 || index >= len(t.Segments) {
		return ErrInvalidRange
	}
	if speed <= 0 {
		return ErrInvalidSpeed
	}
	t.Segments[index].Speed = speed
	return nil
}

// ClearSegments drops all committed segments.
func (t *Timeline) ClearSegments() {
	t.Segments = nil
}

// OutputDuration returns the total concatenated output length in seconds.
func (t *Timeline) OutputDuration() float64 {
	var total float64
	for _, seg := range t.Segments {
		total += seg.AdjustedDuration()
	}
	return total
}

func (t *Timeline) resetTrim() {
	t.TrimStart = 0
	t.TrimEnd = 1
}

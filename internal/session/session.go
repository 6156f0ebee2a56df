// Package session owns all editing state for one loaded source: the
// timeline, the text overlays and the processing flags a presentation layer
// renders. Every mutation is funneled through the session's lock; background
// work only delivers results back through the same funnel, so there is a
// single logical writer.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voslund/clipbench/internal/export"
	"github.com/voslund/clipbench/internal/ffmpeg"
	"github.com/voslund/clipbench/internal/timeline"
)

var (
	// ErrNoSource reports an operation that needs a loaded source.
	ErrNoSource = errors.New("no source loaded")

	// ErrBusy reports an export attempted while another is running.
	ErrBusy = errors.New("an export is already in progress")
)

// Prober supplies source metadata.
type Prober interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// Runner starts export jobs.
type Runner interface {
	Submit(ctx context.Context, req export.Request, notify func(export.Job)) *export.Job
}

// Snapshot is the read-only state handed to observers. The presentation
// layer renders these fields and never reaches back into the session's
// internals.
type Snapshot struct {
	SourcePath    string
	Duration      float64
	IsProcessing  bool
	Progress      float64
	StatusMessage string
	ErrorMessage  string
	Timeline      timeline.Timeline
	Overlays      []timeline.TextOverlay
}

// Listener observes session state changes.
type Listener func(Snapshot)

// Session is the editing session for the currently loaded source.
type Session struct {
	mu        sync.Mutex
	logger    zerolog.Logger
	probe     Prober
	runner    Runner
	source    string
	info      *ffmpeg.VideoInfo
	tl        *timeline.Timeline
	overlays  []timeline.TextOverlay
	thumbs    int // known thumbnail count, used for playhead snapping
	busy      bool
	progress  float64
	status    string
	errMsg    string
	listeners []Listener
}

// New creates an empty session.
func New(logger zerolog.Logger, probe Prober, runner Runner) *Session {
	return &Session{
		logger: logger.With().Str("component", "session").Logger(),
		probe:  probe,
		runner: runner,
	}
}

// Subscribe registers a listener for state changes. Listeners are invoked
// with a snapshot after every mutation, outside the session lock.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SourcePath:    s.source,
		IsProcessing:  s.busy,
		Progress:      s.progress,
		StatusMessage: s.status,
		ErrorMessage:  s.errMsg,
	}
	if s.info != nil {
		snap.Duration = s.info.Seconds()
	}
	if s.tl != nil {
		snap.Timeline = *s.tl
		snap.Timeline.Segments = append([]timeline.Segment(nil), s.tl.Segments...)
	}
	snap.Overlays = append([]timeline.TextOverlay(nil), s.overlays...)
	return snap
}

// apply runs a mutation under the lock and notifies listeners afterwards.
func (s *Session) apply(fn func() error) error {
	s.mu.Lock()
	err := fn()
	if err != nil {
		s.errMsg = err.Error()
	}
	snap := s.snapshotLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return err
}

// Load probes a source file and resets the session to it. Any previous
// timeline, overlays and error state are discarded.
func (s *Session) Load(ctx context.Context, path string) error {
	info, err := s.probe.ProbeVideo(ctx, path)
	if err != nil {
		return s.apply(func() error { return err })
	}
	if !info.HasVideo {
		return s.apply(func() error { return export.ErrNoVideoTrack })
	}

	return s.apply(func() error {
		s.source = path
		s.info = info
		s.tl = timeline.New(info.Seconds())
		s.overlays = nil
		s.errMsg = ""
		s.status = "loaded " + path
		s.progress = 0
		s.logger.Info().Str("source", path).Float64("duration", info.Seconds()).Msg("source loaded")
		return nil
	})
}

// SetThumbnailCount records how many thumbnails the presentation layer has,
// enabling playhead snapping.
func (s *Session) SetThumbnailCount(n int) {
	_ = s.apply(func() error {
		s.thumbs = n
		return nil
	})
}

func (s *Session) requireSource() error {
	if s.tl == nil {
		return ErrNoSource
	}
	return nil
}

// SetTrimStart moves the trim start to a normalized position.
func (s *Session) SetTrimStart(pos float64) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		s.tl.SetTrimStart(pos)
		return nil
	})
}

// SetTrimEnd moves the trim end to a normalized position.
func (s *Session) SetTrimEnd(pos float64) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		s.tl.SetTrimEnd(pos)
		return nil
	})
}

// SetPlayhead moves the playhead; with snap, the position snaps to the
// nearest thumbnail boundary.
func (s *Session) SetPlayhead(pos float64, snap bool) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		count := 0
		if snap {
			count = s.thumbs
		}
		s.tl.SetPlayhead(pos, count)
		return nil
	})
}

// AddSegment commits the trim range as a segment.
func (s *Session) AddSegment(speed float64) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		_, err := s.tl.AddSegment(speed)
		return err
	})
}

// SplitAtPlayhead commits the trim range as two segments split at the
// playhead.
func (s *Session) SplitAtPlayhead(speed float64) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		_, _, err := s.tl.SplitAtPlayhead(speed)
		return err
	})
}

// DeleteSegment removes a segment; out-of-range indexes are no-ops.
func (s *Session) DeleteSegment(index int) {
	_ = s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		s.tl.DeleteSegment(index)
		return nil
	})
}

// MoveSegmentUp moves a segment one place earlier.
func (s *Session) MoveSegmentUp(index int) {
	_ = s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		s.tl.MoveSegmentUp(index)
		return nil
	})
}

// MoveSegmentDown moves a segment one place later.
func (s *Session) MoveSegmentDown(index int) {
	_ = s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		s.tl.MoveSegmentDown(index)
		return nil
	})
}

// SetSegmentSpeed changes a committed segment's speed in place.
func (s *Session) SetSegmentSpeed(index int, speed float64) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		return s.tl.SetSegmentSpeed(index, speed)
	})
}

// ClearSegments drops all committed segments.
func (s *Session) ClearSegments() {
	_ = s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		s.tl.ClearSegments()
		return nil
	})
}

// AddOverlay creates a text overlay.
func (s *Session) AddOverlay(text string, start, end, x, y float64, style timeline.TextStyle) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		o, err := timeline.NewTextOverlay(text, start, end, x, y, s.info.Seconds(), style)
		if err != nil {
			return err
		}
		s.overlays = append(s.overlays, o)
		return nil
	})
}

// AddPresetOverlay creates an overlay from a named preset.
func (s *Session) AddPresetOverlay(preset, text string, start, end float64) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		o, err := timeline.NewPresetOverlay(preset, text, start, end, s.info.Seconds())
		if err != nil {
			return err
		}
		s.overlays = append(s.overlays, o)
		return nil
	})
}

// UpdateOverlay replaces the overlay with the same ID.
func (s *Session) UpdateOverlay(o timeline.TextOverlay) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		for i := range s.overlays {
			if s.overlays[i].ID == o.ID {
				if o.Start >= o.End || o.Start < 0 || o.End > s.info.Seconds() {
					return timeline.ErrInvalidWindow
				}
				s.overlays[i] = o
				return nil
			}
		}
		return timeline.ErrInvalidRange
	})
}

// DuplicateOverlay copies an overlay, shifted by offset seconds.
func (s *Session) DuplicateOverlay(id string, offset float64) error {
	return s.apply(func() error {
		if err := s.requireSource(); err != nil {
			return err
		}
		for _, o := range s.overlays {
			if o.ID == id {
				s.overlays = append(s.overlays, o.Duplicate(offset, s.info.Seconds()))
				return nil
			}
		}
		return timeline.ErrInvalidRange
	})
}

// DeleteOverlay removes the overlay with the given ID; unknown IDs are
// no-ops.
func (s *Session) DeleteOverlay(id string) {
	_ = s.apply(func() error {
		for i := range s.overlays {
			if s.overlays[i].ID == id {
				s.overlays = append(s.overlays[:i], s.overlays[i+1:]...)
				break
			}
		}
		return nil
	})
}

// VisibleOverlays returns the overlays shown at time t in render order.
func (s *Session) VisibleOverlays(t float64) []timeline.TextOverlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timeline.TextOverlay
	for _, o := range s.overlays {
		if o.VisibleAt(t) {
			out = append(out, o)
		}
	}
	return out
}

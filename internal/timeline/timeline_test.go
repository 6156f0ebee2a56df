package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	tl := New(120)
	assert.Equal(t, 0.5, tl.Playhead)
	assert.Equal(t, 0.0, tl.TrimStart)
	assert.Equal(t, 1.0, tl.TrimEnd)
	assert.Empty(t, tl.Segments)
}

func TestSetTrimClamps(t *testing.T) {
	tl := New(100)

	tl.SetTrimStart(-0.3)
	assert.Equal(t, 0.0, tl.TrimStart)
	tl.SetTrimEnd(1.8)
	assert.Equal(t, 1.0, tl.TrimEnd)

	tl.SetTrimStart(0.4)
	tl.SetTrimEnd(0.6)

	// Bounds clamp against each other rather than inverting the selection.
	tl.SetTrimStart(0.9)
	assert.Equal(t, 0.6, tl.TrimStart)
	tl.SetTrimEnd(0.2)
	assert.Equal(t, 0.6, tl.TrimEnd)
}

func TestSetPlayheadSnap(t *testing.T) {
	tl := New(100)

	tl.SetPlayhead(1.4, 0)
	assert.Equal(t, 1.0, tl.Playhead)

	tl.SetPlayhead(0.33, 10)
	assert.InDelta(t, 0.3, tl.Playhead, 1e-9)
	tl.SetPlayhead(0.37, 10)
	assert.InDelta(t, 0.4, tl.Playhead, 1e-9)

	tl.SetPlayhead(0.25, 0)
	assert.Equal(t, 25.0, tl.PlayheadSeconds())
}

func TestAddSegment(t *testing.T) {
	tl := New(200)
	tl.SetTrimStart(0.25)
	tl.SetTrimEnd(0.75)

	seg, err := tl.AddSegment(2)
	require.NoError(t, err)
	assert.Equal(t, 50.0, seg.Start)
	assert.Equal(t, 150.0, seg.End)
	assert.Equal(t, 2.0, seg.Speed)
	assert.NotEmpty(t, seg.ID)

	// Trim resets after commit.
	assert.Equal(t, 0.0, tl.TrimStart)
	assert.Equal(t, 1.0, tl.TrimEnd)
	require.Len(t, tl.Segments, 1)
}

func TestAddSegmentRejectsBadInput(t *testing.T) {
	tl := New(200)
	_, err := tl.AddSegment(0)
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	tl.SetTrimStart(0.5)
	tl.SetTrimEnd(0.5)
	_, err = tl.AddSegment(1)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Empty(t, tl.Segments)
}

func TestSplitAtPlayhead(t *testing.T) {
	tl := New(100)
	tl.SetTrimStart(0.2)
	tl.SetTrimEnd(0.8)
	tl.SetPlayhead(0.5, 0)

	first, second, err := tl.SplitAtPlayhead(1)
	require.NoError(t, err)

	// The two segments partition the trim range with no gap or overlap.
	assert.Equal(t, 20.0, first.Start)
	assert.Equal(t, 50.0, first.End)
	assert.Equal(t, 50.0, second.Start)
	assert.Equal(t, 80.0, second.End)
	require.Len(t, tl.Segments, 2)
	assert.Equal(t, 0.0, tl.TrimStart)
	assert.Equal(t, 1.0, tl.TrimEnd)
}

func TestSplitAtPlayheadOutsideRange(t *testing.T) {
	tl := New(100)
	tl.SetTrimStart(0.4)
	tl.SetTrimEnd(0.6)

	for _, pos := range []float64{0.1, 0.4, 0.6, 0.9} {
		tl.SetPlayhead(pos, 0)
		_, _, err := tl.SplitAtPlayhead(1)
		assert.ErrorIs(t, err, ErrInvalidRange, "playhead=%v", pos)
		assert.Empty(t, tl.Segments)
		// Rejection leaves the trim selection untouched.
		assert.Equal(t, 0.4, tl.TrimStart)
		assert.Equal(t, 0.6, tl.TrimEnd)
	}
}

func threeSegments(t *testing.T) *Timeline {
	t.Helper()
	tl := New(100)
	for _, r := range [][2]float64{{0, 0.2}, {0.2, 0.5}, {0.5, 1}} {
		tl.SetTrimStart(r[0])
		tl.SetTrimEnd(r[1])
		_, err := tl.AddSegment(1)
		require.NoError(t, err)
	}
	return tl
}

func TestMoveSegmentBoundaries(t *testing.T) {
	tl := threeSegments(t)
	first := tl.Segments[0].ID
	last := tl.Segments[2].ID

	tl.MoveSegmentUp(0)
	assert.Equal(t, first, tl.Segments[0].ID)

	tl.MoveSegmentDown(2)
	assert.Equal(t, last, tl.Segments[2].ID)

	tl.MoveSegmentUp(1)
	assert.Equal(t, first, tl.Segments[1].ID)
	tl.MoveSegmentDown(1)
	assert.Equal(t, first, tl.Segments[0].ID)
}

func TestDeleteSegmentOutOfRange(t *testing.T) {
	tl := threeSegments(t)

	tl.DeleteSegment(-1)
	tl.DeleteSegment(3)
	assert.Len(t, tl.Segments, 3)

	tl.DeleteSegment(1)
	assert.Len(t, tl.Segments, 2)
}

func TestSetSegmentSpeed(t *testing.T) {
	tl := threeSegments(t)

	require.NoError(t, tl.SetSegmentSpeed(1, 2.5))
	assert.Equal(t, 2.5, tl.Segments[1].Speed)

	assert.ErrorIs(t, tl.SetSegmentSpeed(5, 2), ErrInvalidRange)
	assert.ErrorIs(t, tl.SetSegmentSpeed(0, -1), ErrInvalidSpeed)
}

func TestAdjustedDuration(t *testing.T) {
	seg := Segment{Start: 10, End: 20, Speed: 1}
	for speed, want := range map[float64]float64{
		0.25: 40,
		0.5:  20,
		1:    10,
		2:    5,
		3:    10.0 / 3,
	} {
		seg.Speed = speed
		assert.InDelta(t, want, seg.AdjustedDuration(), 1e-9, "speed=%v", speed)
	}
}

func TestOutputDuration(t *testing.T) {
	tl := &Timeline{Duration: 10, Segments: []Segment{
		{Start: 0, End: 2, Speed: 1},
		{Start: 2, End: 5, Speed: 2},
		{Start: 5, End: 9, Speed: 1},
	}}
	assert.InDelta(t, 7.5, tl.OutputDuration(), 1e-9)
}

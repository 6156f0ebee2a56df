package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voslund/clipbench/internal/timeline"
)

func TestFromSegmentsPreservesOrder(t *testing.T) {
	segs := []timeline.Segment{
		{ID: "a", Start: 0, End: 2, Speed: 1},
		{ID: "b", Start: 2, End: 5, Speed: 2},
		{ID: "c", Start: 5, End: 9, Speed: 1},
	}
	p, err := FromSegments("in.mp4", true, segs)
	require.NoError(t, err)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, 2.0, p.Steps[1].Start)
	assert.InDelta(t, 7.5, p.OutputDuration(), 1e-9)
}

func TestFromSegmentsRejectsBadSegments(t *testing.T) {
	_, err := FromSegments("in.mp4", true, nil)
	assert.ErrorIs(t, err, ErrEmptyPlan)

	_, err = FromSegments("in.mp4", true, []timeline.Segment{{Start: 5, End: 5, Speed: 1}})
	assert.ErrorIs(t, err, timeline.ErrInvalidRange)
}

func TestPlacementsCursor(t *testing.T) {
	p := &Plan{Steps: []Step{
		{Start: 0, End: 2, Speed: 1},
		{Start: 2, End: 5, Speed: 2},
		{Start: 5, End: 9, Speed: 1},
	}}
	placements := p.Placements()
	require.Len(t, placements, 3)
	assert.Equal(t, 0.0, placements[0].OutputStart)
	assert.InDelta(t, 2.0, placements[1].OutputStart, 1e-9)
	assert.InDelta(t, 3.5, placements[2].OutputStart, 1e-9)
}

func TestFilterComplexWithAudio(t *testing.T) {
	p := SingleRange("in.mp4", true, 10, 20, 2)
	graph, err := p.FilterComplex()
	require.NoError(t, err)

	assert.Contains(t, graph, "[0:v]trim=start=10:end=20,setpts=(PTS-STARTPTS)/2[v0]")
	assert.Contains(t, graph, "atrim=start=10:end=20")
	assert.Contains(t, graph, "atempo=2")
	assert.Contains(t, graph, "concat=n=1:v=1:a=1[outv][outa]")
}

func TestFilterComplexVideoOnly(t *testing.T) {
	p := SingleRange("in.mp4", false, 0, 5, 1)
	graph, err := p.FilterComplex()
	require.NoError(t, err)

	assert.Contains(t, graph, "setpts=PTS-STARTPTS[v0]")
	assert.NotContains(t, graph, "atrim")
	assert.Contains(t, graph, "concat=n=1:v=1:a=0[outv]")
}

func TestFilterComplexMultiSegment(t *testing.T) {
	p := &Plan{Source: "in.mp4", WithAudio: true, Steps: []Step{
		{Start: 0, End: 2, Speed: 1},
		{Start: 2, End: 5, Speed: 2},
	}}
	graph, err := p.FilterComplex()
	require.NoError(t, err)

	assert.Contains(t, graph, "[v0][a0][v1][a1]concat=n=2:v=1:a=1[outv][outa]")
	// Segment order in the graph matches list order.
	assert.Less(t, strings.Index(graph, "trim=start=0:end=2"), strings.Index(graph, "trim=start=2:end=5"))
}

func TestAtempoChain(t *testing.T) {
	assert.Nil(t, AtempoChain(1))
	assert.Equal(t, []float64{1.5}, AtempoChain(1.5))
	assert.Equal(t, []float64{2, 2}, AtempoChain(4))
	assert.Equal(t, []float64{0.5, 0.5}, AtempoChain(0.25))

	// Product of the chain reproduces the factor.
	for _, speed := range []float64{0.1, 0.25, 0.5, 1, 2, 3, 8} {
		product := 1.0
		for _, f := range AtempoChain(speed) {
			assert.GreaterOrEqual(t, f, 0.5)
			assert.LessOrEqual(t, f, 2.0)
			product *= f
		}
		if speed == 1 {
			continue
		}
		assert.InDelta(t, speed, product, 1e-9, "speed=%v", speed)
	}
}

func TestDrawtextFilter(t *testing.T) {
	o, err := timeline.NewTextOverlay("Hello", 5, 10, 0.5, 0.85, 60, timeline.TextStyle{})
	require.NoError(t, err)
	o.Style.BackgroundOpacity = 0.6
	o.Style.Shadow = &timeline.Shadow{Color: "#000000", Radius: 3}

	filters := DrawtextFilters([]timeline.TextOverlay{o}, "", 0.3)
	require.Len(t, filters, 1)
	f := filters[0]

	assert.True(t, strings.HasPrefix(f, "drawtext="))
	assert.Contains(t, f, "text='Hello'")
	assert.Contains(t, f, "fontcolor=0xFFFFFF@1")
	assert.Contains(t, f, "x=(w-text_w)*0.5")
	assert.Contains(t, f, "y=(h-text_h)*0.85")
	assert.Contains(t, f, "boxcolor=0x000000@0.6")
	assert.Contains(t, f, "shadowx=3")
	assert.Contains(t, f, "enable='between(t,5,10)'")
	assert.Contains(t, f, "alpha='if(lt(t,5.3),(t-5)/0.3,if(gt(t,9.7),(10-t)/0.3,1))'")
}

func TestDrawtextShortWindowFade(t *testing.T) {
	o, err := timeline.NewTextOverlay("x", 1, 1.4, 0.5, 0.5, 60, timeline.TextStyle{})
	require.NoError(t, err)

	f := DrawtextFilters([]timeline.TextOverlay{o}, "", 0.3)[0]
	// Fade shrinks to half the window so the ramps never overlap.
	assert.Contains(t, f, "(t-1)/0.2")
}

func TestDrawtextListOrder(t *testing.T) {
	a, _ := timeline.NewTextOverlay("under", 0, 5, 0.5, 0.5, 60, timeline.TextStyle{})
	b, _ := timeline.NewTextOverlay("over", 0, 5, 0.5, 0.5, 60, timeline.TextStyle{})
	filters := DrawtextFilters([]timeline.TextOverlay{a, b}, "", 0.3)
	require.Len(t, filters, 2)
	assert.Contains(t, filters[0], "under")
	assert.Contains(t, filters[1], "over")
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `12\:30`, EscapeText("12:30"))
	assert.Equal(t, `100\%`, EscapeText("100%"))
	assert.Equal(t, `it\\\'s`, EscapeText("it's"))
}

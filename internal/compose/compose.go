// Package compose maps timeline segments onto an output timeline and
// renders that mapping as an ffmpeg filter graph. It owns no subprocess
// state; the export service feeds its output to the encoder.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/voslund/clipbench/internal/timeline"
)

// ErrEmptyPlan reports a plan with no steps to place.
var ErrEmptyPlan = errors.New("composition has no segments")

// Step is one source range inserted into the output, retimed by Speed.
type Step struct {
	Start float64 // source seconds
	End   float64 // source seconds
	Speed float64
}

// OutputDuration is the step's length on the output timeline.
func (s Step) OutputDuration() float64 {
	return (s.End - s.Start) / s.Speed
}

// Placement records where a step landed on the output timeline.
type Placement struct {
	Step        Step
	OutputStart float64 // cursor position when the step was inserted
}

// Plan is an ordered composition of source ranges.
type Plan struct {
	Source    string
	Steps     []Step
	WithAudio bool
}

// FromSegments builds a plan from committed timeline segments, preserving
// list order.
func FromSegments(source string, withAudio bool, segs []timeline.Segment) (*Plan, error) {
	if len(segs) == 0 {
		return nil, ErrEmptyPlan
	}
	p := &Plan{Source: source, WithAudio: withAudio}
	for _, seg := range segs {
		if seg.End <= seg.Start || seg.Speed <= 0 {
			return nil, fmt.Errorf("segment %s: %w", seg.ID, timeline.ErrInvalidRange)
		}
		p.Steps = append(p.Steps, Step{Start: seg.Start, End: seg.End, Speed: seg.Speed})
	}
	return p, nil
}

// SingleRange builds a one-step plan; trim and uniform speed change both
// reduce to this.
func SingleRange(source string, withAudio bool, start, end, speed float64) *Plan {
	return &Plan{
		Source:    source,
		WithAudio: withAudio,
		Steps:     []Step{{Start: start, End: end, Speed: speed}},
	}
}

// Placements walks the steps with a running output cursor. The export
// service drives its assembly progress off this sequence.
func (p *Plan) Placements() []Placement {
	out := make([]Placement, 0, len(p.Steps))
	cursor := 0.0
	for _, step := range p.Steps {
		out = append(out, Placement{Step: step, OutputStart: cursor})
		cursor += step.OutputDuration()
	}
	return out
}

// OutputDuration is the total composed length in seconds.
func (p *Plan) OutputDuration() float64 {
	var total float64
	for _, step := range p.Steps {
		total += step.OutputDuration()
	}
	return total
}

// FilterComplex renders the plan as an ffmpeg filter graph ending in [outv]
// (and [outa] when audio is carried). Video and audio of each step share the
// same retime factor so they stay in sync.
func (p *Plan) FilterComplex() (string, error) {
	if len(p.Steps) == 0 {
		return "", ErrEmptyPlan
	}

	var b strings.Builder
	for i, step := range p.Steps {
		setpts := "setpts=PTS-STARTPTS"
		if step.Speed != 1 {
			setpts = fmt.Sprintf("setpts=(PTS-STARTPTS)/%s", formatFloat(step.Speed))
		}
		fmt.Fprintf(&b, "[0:v]trim=start=%s:end=%s,%s[v%d];",
			formatFloat(step.Start), formatFloat(step.End), setpts, i)

		if p.WithAudio {
			chain := []string{
				fmt.Sprintf("atrim=start=%s:end=%s", formatFloat(step.Start), formatFloat(step.End)),
				"asetpts=PTS-STARTPTS",
			}
			for _, factor := range AtempoChain(step.Speed) {
				chain = append(chain, fmt.Sprintf("atempo=%s", formatFloat(factor)))
			}
			fmt.Fprintf(&b, "[0:a]%s[a%d];", strings.Join(chain, ","), i)
		}
	}

	for i := range p.Steps {
		if p.WithAudio {
			fmt.Fprintf(&b, "[v%d][a%d]", i, i)
		} else {
			fmt.Fprintf(&b, "[v%d]", i)
		}
	}
	if p.WithAudio {
		fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(p.Steps))
	} else {
		fmt.Fprintf(&b, "concat=n=%d:v=1:a=0[outv]", len(p.Steps))
	}

	return b.String(), nil
}

// AtempoChain decomposes a speed factor into atempo factors within the
// filter's supported [0.5, 2.0] range.
func AtempoChain(speed float64) []float64 {
	if speed == 1 {
		return nil
	}
	var chain []float64
	for speed > 2 {
		chain = append(chain, 2)
		speed /= 2
	}
	for speed < 0.5 {
		chain = append(chain, 0.5)
		speed /= 0.5
	}
	chain = append(chain, speed)
	return chain
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voslund/clipbench/internal/timeline"
	"github.com/voslund/clipbench/pkg/timecode"
)

// Cut lists are the CLI stand-in for interactive timeline editing: a YAML
// file listing segments (for render) and overlays (for burn).

// flexTime accepts either a bare number of seconds or a clock string like
// "1:05.25".
type flexTime float64

func (t *flexTime) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	secs, err := timecode.ParseClock(raw)
	if err != nil {
		return fmt.Errorf("bad time %q: %w", raw, err)
	}
	*t = flexTime(secs)
	return nil
}

type cutSegment struct {
	Start flexTime `yaml:"start"`
	End   flexTime `yaml:"end"`
	Speed float64  `yaml:"speed"`
}

type cutOverlay struct {
	Preset string   `yaml:"preset"`
	Text   string   `yaml:"text"`
	Start  flexTime `yaml:"start"`
	End    flexTime `yaml:"end"`
	X      *float64 `yaml:"x"`
	Y      *float64 `yaml:"y"`
	Font   string   `yaml:"font"`
	Size   float64  `yaml:"size"`
	Color  string   `yaml:"color"`
}

type cutList struct {
	Segments []cutSegment `yaml:"segments"`
	Overlays []cutOverlay `yaml:"overlays"`
}

func loadCutList(path string) (*cutList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cl cutList
	if err := yaml.Unmarshal(data, &cl); err != nil {
		return nil, fmt.Errorf("failed to parse cut list: %w", err)
	}
	return &cl, nil
}

func (cl *cutList) segments(sourceDuration float64) ([]timeline.Segment, error) {
	tl := timeline.New(sourceDuration)
	for i, cs := range cl.Segments {
		start, end := float64(cs.Start), float64(cs.End)
		if start < 0 || end > sourceDuration || end <= start {
			return nil, fmt.Errorf("segment %d: range %s-%s outside source duration %s",
				i+1, timecode.FormatClock(start), timecode.FormatClock(end), timecode.FormatClock(sourceDuration))
		}
		speed := cs.Speed
		if speed == 0 {
			speed = 1
		}
		tl.SetTrimStart(start / sourceDuration)
		tl.SetTrimEnd(end / sourceDuration)
		if _, err := tl.AddSegment(speed); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
	}
	return tl.Segments, nil
}

func (cl *cutList) overlays(sourceDuration float64) ([]timeline.TextOverlay, error) {
	var out []timeline.TextOverlay
	for i, co := range cl.Overlays {
		var (
			o   timeline.TextOverlay
			err error
		)
		if co.Preset != "" {
			o, err = timeline.NewPresetOverlay(co.Preset, co.Text, float64(co.Start), float64(co.End), sourceDuration)
		} else {
			style := timeline.TextStyle{FontFamily: co.Font, FontSize: co.Size, Color: co.Color}
			x, y := 0.5, 0.5
			if co.X != nil {
				x = *co.X
			}
			if co.Y != nil {
				y = *co.Y
			}
			o, err = timeline.NewTextOverlay(co.Text, float64(co.Start), float64(co.End), x, y, sourceDuration, style)
		}
		if err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i+1, err)
		}
		if co.Preset != "" && co.X != nil {
			o.X = *co.X
		}
		if co.Preset != "" && co.Y != nil {
			o.Y = *co.Y
		}
		out = append(out, o)
	}
	return out, nil
}

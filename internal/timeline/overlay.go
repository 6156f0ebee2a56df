package timeline

import (
	"github.com/google/uuid"

	"github.com/voslund/clipbench/pkg/timecode"
)

// Weight is a coarse font weight, mapped by the burn-in step onto whatever
// the font provides.
type Weight string

const (
	WeightRegular Weight = "regular"
	WeightMedium  Weight = "medium"
	WeightBold    Weight = "bold"
)

// Alignment controls multi-line text layout inside the rendered box.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Shadow is an optional drop shadow behind the text.
type Shadow struct {
	Color  string  // hex, e.g. "#000000"
	Radius float64 // offset in pixels
}

// TextStyle describes how an overlay is drawn during burn-in.
type TextStyle struct {
	FontFamily        string
	FontSize          float64 // points
	Weight            Weight
	Color             string // hex
	BackgroundColor   string // hex
	BackgroundOpacity float64 // 0..1
	Alignment         Alignment
	Opacity           float64 // 0..1
	Shadow            *Shadow
}

// TextOverlay is a timed, positioned, styled text element. Times are
// source-relative seconds; position is normalized with (0,0) at the top left.
type TextOverlay struct {
	ID    string
	Text  string
	Start float64
	End   float64
	X     float64 // 0..1
	Y     float64 // 0..1
	Style TextStyle
}

// VisibleAt reports whether the overlay is shown at time t. The end of the
// window is exclusive.
func (o TextOverlay) VisibleAt(t float64) bool {
	return t >= o.Start && t < o.End
}

// Duplicate returns a copy with a fresh ID, time-shifted by offset seconds
// and clamped into the source window.
func (o TextOverlay) Duplicate(offset, sourceDuration float64) TextOverlay {
	dup := o
	dup.ID = uuid.NewString()
	length := o.End - o.Start
	dup.Start = o.Start + offset
	if dup.Start < 0 {
		dup.Start = 0
	}
	if dup.Start+length > sourceDuration {
		dup.Start = sourceDuration - length
		if dup.Start < 0 {
			dup.Start = 0
		}
	}
	dup.End = dup.Start + length
	if dup.End > sourceDuration {
		dup.End = sourceDuration
	}
	return dup
}

// NewTextOverlay validates the window against the source duration and
// assigns an ID. Zero-value style fields are filled from the default style.
func NewTextOverlay(text string, start, end, x, y, sourceDuration float64, style TextStyle) (TextOverlay, error) {
	if start >= end || start < 0 || end > sourceDuration {
		return TextOverlay{}, ErrInvalidWindow
	}
	style = mergeStyle(DefaultStyle(), style)
	return TextOverlay{
		ID:    uuid.NewString(),
		Text:  text,
		Start: start,
		End:   end,
		X:     timecode.Clamp01(x),
		Y:     timecode.Clamp01(y),
		Style: style,
	}, nil
}

// DefaultStyle is the baseline overlay styling.
func DefaultStyle() TextStyle {
	return TextStyle{
		FontFamily:        "Sans",
		FontSize:          48,
		Weight:            WeightRegular,
		Color:             "#FFFFFF",
		BackgroundColor:   "#000000",
		BackgroundOpacity: 0,
		Alignment:         AlignCenter,
		Opacity:           1,
	}
}

func mergeStyle(base, over TextStyle) TextStyle {
	if over.FontFamily != "" {
		base.FontFamily = over.FontFamily
	}
	if over.FontSize > 0 {
		base.FontSize = over.FontSize
	}
	if over.Weight != "" {
		base.Weight = over.Weight
	}
	if over.Color != "" {
		base.Color = over.Color
	}
	if over.BackgroundColor != "" {
		base.BackgroundColor = over.BackgroundColor
	}
	if over.BackgroundOpacity > 0 {
		base.BackgroundOpacity = over.BackgroundOpacity
	}
	if over.Alignment != "" {
		base.Alignment = over.Alignment
	}
	if over.Opacity > 0 {
		base.Opacity = over.Opacity
	}
	base.Shadow = over.Shadow
	return base
}

// Preset names accepted by NewPresetOverlay.
const (
	PresetTitle     = "title"
	PresetSubtitle  = "subtitle"
	PresetWatermark = "watermark"
)

// NewPresetOverlay creates an overlay from a named preset. Unknown names fall
// back to the default style.
func NewPresetOverlay(preset, text string, start, end, sourceDuration float64) (TextOverlay, error) {
	switch preset {
	case PresetTitle:
		style := DefaultStyle()
		style.FontSize = 72
		style.Weight = WeightBold
		style.Shadow = &Shadow{Color: "#000000", Radius: 4}
		return NewTextOverlay(text, start, end, 0.5, 0.15, sourceDuration, style)
	case PresetSubtitle:
		style := DefaultStyle()
		style.FontSize = 36
		style.BackgroundOpacity = 0.6
		return NewTextOverlay(text, start, end, 0.5, 0.85, sourceDuration, style)
	case PresetWatermark:
		style := DefaultStyle()
		style.FontSize = 24
		style.Opacity = 0.5
		return NewTextOverlay(text, start, end, 0.95, 0.05, sourceDuration, style)
	default:
		return NewTextOverlay(text, start, end, 0.5, 0.5, sourceDuration, DefaultStyle())
	}
}

package compose

import (
	"fmt"
	"strings"

	"github.com/voslund/clipbench/internal/timeline"
)

// DefaultFadeSecs is the visibility ramp applied at both edges of an
// overlay's window.
const DefaultFadeSecs = 0.3

// DrawtextFilters renders each overlay as a drawtext filter in list order,
// so later entries draw on top. fontFile may be empty, in which case the
// overlay's family name is resolved by fontconfig.
func DrawtextFilters(overlays []timeline.TextOverlay, fontFile string, fadeSecs float64) []string {
	if fadeSecs <= 0 {
		fadeSecs = DefaultFadeSecs
	}
	filters := make([]string, 0, len(overlays))
	for _, o := range overlays {
		filters = append(filters, drawtext(o, fontFile, fadeSecs))
	}
	return filters
}

func drawtext(o timeline.TextOverlay, fontFile string, fade float64) string {
	parts := []string{
		fmt.Sprintf("text='%s'", EscapeText(o.Text)),
	}

	if fontFile != "" {
		parts = append(parts, fmt.Sprintf("fontfile='%s'", EscapeText(fontFile)))
	} else {
		parts = append(parts, fmt.Sprintf("font='%s'", EscapeText(fontName(o.Style))))
	}

	parts = append(parts,
		fmt.Sprintf("fontsize=%d", int(o.Style.FontSize)),
		fmt.Sprintf("fontcolor=%s@%s", hexColor(o.Style.Color), formatFloat(o.Style.Opacity)),
		// Normalized position maps onto the free space so 0/0.5/1 mean
		// flush-left/centered/flush-right.
		fmt.Sprintf("x=(w-text_w)*%s", formatFloat(o.X)),
		fmt.Sprintf("y=(h-text_h)*%s", formatFloat(o.Y)),
	)

	if o.Style.Alignment != "" {
		parts = append(parts, fmt.Sprintf("text_align=%s", string(o.Style.Alignment)))
	}

	if o.Style.BackgroundOpacity > 0 {
		parts = append(parts,
			"box=1",
			fmt.Sprintf("boxcolor=%s@%s", hexColor(o.Style.BackgroundColor), formatFloat(o.Style.BackgroundOpacity)),
			"boxborderw=8",
		)
	}

	if o.Style.Shadow != nil {
		off := int(o.Style.Shadow.Radius)
		if off < 1 {
			off = 1
		}
		parts = append(parts,
			fmt.Sprintf("shadowcolor=%s@%s", hexColor(o.Style.Shadow.Color), formatFloat(o.Style.Opacity)),
			fmt.Sprintf("shadowx=%d", off),
			fmt.Sprintf("shadowy=%d", off),
		)
	}

	parts = append(parts,
		fmt.Sprintf("alpha='%s'", fadeAlpha(o.Start, o.End, fade)),
		fmt.Sprintf("enable='between(t,%s,%s)'", formatFloat(o.Start), formatFloat(o.End)),
	)

	return "drawtext=" + strings.Join(parts, ":")
}

// fadeAlpha ramps visibility over the fade window at both edges. Windows
// shorter than two fades ramp across half the window instead.
func fadeAlpha(start, end, fade float64) string {
	if end-start < 2*fade {
		fade = (end - start) / 2
	}
	return fmt.Sprintf("if(lt(t,%s),(t-%s)/%s,if(gt(t,%s),(%s-t)/%s,1))",
		formatFloat(start+fade), formatFloat(start), formatFloat(fade),
		formatFloat(end-fade), formatFloat(end), formatFloat(fade))
}

// fontName appends the weight to the family for fontconfig resolution.
func fontName(s timeline.TextStyle) string {
	switch s.Weight {
	case timeline.WeightBold:
		return s.FontFamily + " Bold"
	case timeline.WeightMedium:
		return s.FontFamily + " Medium"
	default:
		return s.FontFamily
	}
}

// hexColor converts "#RRGGBB" to ffmpeg's 0xRRGGBB form.
func hexColor(c string) string {
	if strings.HasPrefix(c, "#") {
		return "0x" + strings.TrimPrefix(c, "#")
	}
	if c == "" {
		return "white"
	}
	return c
}

// EscapeText escapes a string for use inside a quoted drawtext argument.
func EscapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}

package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayVisibilityWindow(t *testing.T) {
	o, err := NewTextOverlay("hi", 5, 10, 0.5, 0.5, 60, TextStyle{})
	require.NoError(t, err)

	assert.False(t, o.VisibleAt(4.99))
	assert.True(t, o.VisibleAt(5))
	assert.True(t, o.VisibleAt(9.99))
	// End is exclusive.
	assert.False(t, o.VisibleAt(10))
}

func TestNewTextOverlayValidation(t *testing.T) {
	_, err := NewTextOverlay("x", 10, 10, 0, 0, 60, TextStyle{})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewTextOverlay("x", -1, 5, 0, 0, 60, TextStyle{})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewTextOverlay("x", 50, 70, 0, 0, 60, TextStyle{})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	o, err := NewTextOverlay("x", 0, 5, -0.5, 1.5, 60, TextStyle{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.X)
	assert.Equal(t, 1.0, o.Y)
	// Empty style picks up defaults.
	assert.Equal(t, "Sans", o.Style.FontFamily)
	assert.Equal(t, 1.0, o.Style.Opacity)
}

func TestDuplicateShiftsAndClamps(t *testing.T) {
	o, err := NewTextOverlay("x", 50, 55, 0.5, 0.5, 60, TextStyle{})
	require.NoError(t, err)

	dup := o.Duplicate(2, 60)
	assert.NotEqual(t, o.ID, dup.ID)
	assert.Equal(t, 52.0, dup.Start)
	assert.Equal(t, 57.0, dup.End)

	// Shift past the end keeps the window length, pinned to the tail.
	dup = o.Duplicate(20, 60)
	assert.Equal(t, 55.0, dup.Start)
	assert.Equal(t, 60.0, dup.End)
}

func TestPresets(t *testing.T) {
	title, err := NewPresetOverlay(PresetTitle, "Title", 0, 3, 60)
	require.NoError(t, err)
	assert.Equal(t, WeightBold, title.Style.Weight)
	assert.NotNil(t, title.Style.Shadow)

	sub, err := NewPresetOverlay(PresetSubtitle, "Sub", 0, 3, 60)
	require.NoError(t, err)
	assert.Equal(t, 0.6, sub.Style.BackgroundOpacity)

	wm, err := NewPresetOverlay(PresetWatermark, "WM", 0, 3, 60)
	require.NoError(t, err)
	assert.Equal(t, 0.5, wm.Style.Opacity)

	plain, err := NewPresetOverlay("nope", "p", 0, 3, 60)
	require.NoError(t, err)
	assert.Equal(t, DefaultStyle().FontSize, plain.Style.FontSize)
}

package timecode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClock(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00.00"},
		{5.5, "0:05.50"},
		{59.999, "1:00.00"},
		{125.75, "2:05.75"},
		{600, "10:00.00"},
		{3725.5, "1:02:05.50"},
		{-3, "0:00.00"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatClock(c.seconds), "seconds=%v", c.seconds)
	}
}

func TestClockRoundTrip(t *testing.T) {
	got, err := ParseClock(FormatClock(125.75))
	require.NoError(t, err)
	assert.InDelta(t, 125.75, got, 0.01)

	got, err = ParseClock("2:05.75")
	require.NoError(t, err)
	assert.InDelta(t, 125.75, got, 0.01)
}

func TestFormatDuration(t *testing.T) {
	d := 1*time.Hour + 2*time.Minute + 3500*time.Millisecond
	assert.Equal(t, "01:02:03.500", FormatDuration(d))
	assert.Equal(t, "00:00:00.000", FormatDuration(0))
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45.5", 45.5},
		{"2:05.75", 125.75},
		{"01:02:03.5", 3723.5},
		{" 10:00 ", 600},
	}
	for _, c := range cases {
		d, err := ParseTimestamp(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, d.Seconds(), 0.001, c.in)
	}

	for _, bad := range []string{"", "abc", "1:2:3:4", "1:xx"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFrameRate(t *testing.T) {
	assert.Equal(t, 30.0, ParseFrameRate("30/1"))
	assert.InDelta(t, 29.97, ParseFrameRate("30000/1001"), 0.001)
	assert.Equal(t, 0.0, ParseFrameRate("30"))
	assert.Equal(t, 0.0, ParseFrameRate("30/0"))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.2))
	assert.Equal(t, 1.0, Clamp01(1.7))
	assert.Equal(t, 0.4, Clamp01(0.4))
}

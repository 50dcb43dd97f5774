package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClockMinutes(t *testing.T) {
	assert.InDelta(t, 10.5, ParseClockMinutes("10:30"), 0.001)
	assert.InDelta(t, 5.75, ParseClockMinutes("5:45"), 0.001)
	assert.InDelta(t, 0, ParseClockMinutes("0:00"), 0.001)
	assert.InDelta(t, 5, ParseClockMinutes("5"), 0.001)
}

func TestParseClockMinutesMalformed(t *testing.T) {
	// Broken durations contribute zero instead of failing
	assert.InDelta(t, 0, ParseClockMinutes(""), 0.001)
	assert.InDelta(t, 0, ParseClockMinutes("abc"), 0.001)
	assert.InDelta(t, 0, ParseClockMinutes("abc:xyz"), 0.001)
	assert.InDelta(t, 10, ParseClockMinutes("10:xx"), 0.001)
	assert.InDelta(t, 0.5, ParseClockMinutes("xx:30"), 0.001)
}

func TestFormatTotalMinutes(t *testing.T) {
	assert.Equal(t, "16min", FormatTotalMinutes(16.25))
	assert.Equal(t, "0min", FormatTotalMinutes(0))
	assert.Equal(t, "59min", FormatTotalMinutes(59.4))
	assert.Equal(t, "1h 0min", FormatTotalMinutes(60))
	assert.Equal(t, "2h 15min", FormatTotalMinutes(135))
}

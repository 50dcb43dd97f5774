package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseClockMinutes converts a lesson duration in "mm:ss" form to minutes.
// Malformed or missing components count as zero, so a bad duration simply
// contributes nothing to a course total.
func ParseClockMinutes(duration string) float64 {
	parts := strings.SplitN(duration, ":", 2)

	mins, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	secs := 0
	if len(parts) > 1 {
		secs, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	if mins < 0 {
		mins = 0
	}
	if secs < 0 {
		secs = 0
	}

	return float64(mins) + float64(secs)/60
}

// FormatTotalMinutes renders an accumulated duration as "2h 15min", or just
// "45min" when it is under an hour.
func FormatTotalMinutes(totalMinutes float64) string {
	hours := int(totalMinutes) / 60
	mins := int(math.Round(math.Mod(totalMinutes, 60)))

	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, mins)
	}
	return fmt.Sprintf("%dmin", mins)
}

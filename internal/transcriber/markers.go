package transcriber

import (
	"fmt"
	"math"
	"strings"
)

// Annotate renders segments as text lines with a "[MM:00]" marker line
// before the first segment of every new minute. Segments are visited in the
// given order; a minute that reappears after a different one gets a new
// marker.
func Annotate(segments []Segment) string {
	lines := make([]string, 0, len(segments)*2)
	currentMinute := -1

	for _, seg := range segments {
		minute := int(math.Floor(seg.Start / 60))
		if minute != currentMinute {
			currentMinute = minute
			lines = append(lines, MinuteMarker(minute))
		}
		lines = append(lines, strings.TrimSpace(seg.Text))
	}

	return strings.Join(lines, "\n")
}

// MinuteMarker formats the marker line for a minute index.
func MinuteMarker(minute int) string {
	return fmt.Sprintf("[%02d:00]", minute)
}

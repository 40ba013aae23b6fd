package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDuration formats a clip duration: "850ms", "3.2s", "1m4.0s".
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	return fmt.Sprintf("%dm%.1fs", mins, secs-float64(mins*60))
}

// FormatShape formats tensor dimensions as "3x80x120".
func FormatShape(dims ...int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}

// FormatSimilarity formats a similarity with four decimals.
func FormatSimilarity(s float64) string {
	return strconv.FormatFloat(s, 'f', 4, 64)
}

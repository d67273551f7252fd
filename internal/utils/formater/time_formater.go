package formater

import (
	"fmt"
	"time"
)

// CreatePollDuration renders d as MM:SS, or HH:MM:SS from an hour up.
// Negative durations render as zero.
func CreatePollDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := d / time.Hour
	d = d % time.Hour
	minutes := d / time.Minute
	d = d % time.Minute
	seconds := d / time.Second

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

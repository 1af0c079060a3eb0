// utils/timeago.go
package utils

import (
	"fmt"
	"time"
)

// TimeAgo renders a timestamp as a short relative phrase, falling back to an
// absolute date past 30 days.
func TimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		return fmt.Sprintf("%d %s ago", mins, plural("minute", mins))
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		return fmt.Sprintf("%d %s ago", hours, plural("hour", hours))
	case diff < 30*24*time.Hour:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d %s ago", days, plural("day", days))
	default:
		return t.Format("Jan 02, 2006")
	}
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

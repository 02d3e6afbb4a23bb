package util

import (
	"fmt"
	"time"
)

// RelativeTimeShort formats a file modification time as "2h ago". Clock
// skew that puts t in the future reads as "now".
func RelativeTimeShort(t time.Time) string {
	return relativeTimeShort(time.Since(t), t)
}

func relativeTimeShort(diff time.Duration, t time.Time) string {
	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	case diff < 365*24*time.Hour:
		return t.Format("Jan 2")
	default:
		return t.Format("Jan 2 2006")
	}
}

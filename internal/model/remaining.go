package model

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatRemaining renders the whole seconds between now and target using the largest
// unit that fits: "Now!", "45s", "12m", "5h", "3d". Division truncates.
func FormatRemaining(now, target time.Time) string {
	s := int64(target.Sub(now) / time.Second)
	switch {
	case s <= 0:
		return "Now!"
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm", s/60)
	case s < 86400:
		return fmt.Sprintf("%dh", s/3600)
	default:
		return fmt.Sprintf("%dd", s/86400)
	}
}

// DescribeTarget returns a relative phrase such as "3 days from now" or "2 hours ago".
func DescribeTarget(now, target time.Time) string {
	return humanize.RelTime(target, now, "ago", "from now")
}

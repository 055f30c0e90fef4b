package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateTime = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[ T](\d{2}:\d{2}(?::\d{2})?)$`)
)

// parseTarget parses:
// - YYYY-MM-DD (midnight, local)
// - YYYY-MM-DD HH:MM[:SS] (local date+time)
// - RFC3339 / RFC3339Nano (timezone-aware)
func parseTarget(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	if loc == nil {
		loc = time.Local
	}

	if reDateOnly.MatchString(s) {
		return time.ParseInLocation("2006-01-02", s, loc)
	}

	if m := reDateTime.FindStringSubmatch(s); m != nil {
		layout := "2006-01-02 15:04"
		if len(m[2]) == len("15:04:05") {
			layout = "2006-01-02 15:04:05"
		}
		return time.ParseInLocation(layout, m[1]+" "+m[2], loc)
	}

	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}

	return time.Time{}, fmt.Errorf("invalid datetime %q (expected YYYY-MM-DD, YYYY-MM-DD HH:MM, or RFC3339)", s)
}

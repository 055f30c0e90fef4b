package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

const (
	RepeatNone    = ""
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
	RepeatYearly  = "yearly"
)

// RepeatKeywords lists the shorthand repeat values accepted besides raw RRULEs.
func RepeatKeywords() []string {
	return []string{RepeatNone, RepeatWeekly, RepeatMonthly, RepeatYearly}
}

// RRuleFor expands a repeat keyword into an RRULE body. Anything else is returned as-is
// (minus an optional "RRULE:" prefix) and is expected to be a raw rule.
func RRuleFor(repeat string) string {
	r := strings.TrimSpace(repeat)
	switch strings.ToLower(r) {
	case RepeatNone:
		return ""
	case RepeatWeekly:
		return "FREQ=WEEKLY"
	case RepeatMonthly:
		return "FREQ=MONTHLY"
	case RepeatYearly:
		return "FREQ=YEARLY"
	}
	if len(r) > len("RRULE:") && strings.EqualFold(r[:len("RRULE:")], "RRULE:") {
		r = r[len("RRULE:"):]
	}
	return r
}

func parseRepeat(start time.Time, repeat string) (*rrule.RRule, error) {
	body := RRuleFor(repeat)
	if body == "" {
		return nil, nil
	}
	r, err := rrule.StrToRRule(body)
	if err != nil {
		return nil, fmt.Errorf("invalid repeat %q: %w", repeat, err)
	}
	r.DTStart(start)
	return r, nil
}

// ValidRepeat reports whether repeat is empty, a keyword, or a parseable RRULE.
func ValidRepeat(repeat string) bool {
	_, err := parseRepeat(time.Unix(0, 0).UTC(), repeat)
	return err == nil
}

// NextOccurrence returns the first occurrence of the rule anchored at start that is at or
// after now. ok is false for one-shot events, invalid rules or exhausted rules.
func NextOccurrence(start time.Time, repeat string, now time.Time) (time.Time, bool) {
	r, err := parseRepeat(start, repeat)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	if !now.After(start) {
		return start, true
	}
	next := r.After(now, true)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

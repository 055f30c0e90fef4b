package model

import (
	"strings"
	"time"
)

// CountdownEvent is a single countdown record.
//
// Updates replace the whole record; callers never mutate a stored event in place.
type CountdownEvent struct {
	ID         string    `json:"id" yaml:"id" validate:"omitempty,eventid"`
	Title      string    `json:"title" yaml:"title" validate:"required,notblank"`
	TargetDate time.Time `json:"targetDate" yaml:"targetDate"`
	ColorHex   string    `json:"colorHex" yaml:"colorHex" validate:"required,colorhex"`

	// ImageData holds the raw bytes of an optional card background, stored as picked.
	ImageData []byte `json:"imageData,omitempty" yaml:"-"`

	// Repeat is empty for one-shot countdowns; see NextOccurrence.
	Repeat string `json:"repeat,omitempty" yaml:"repeat,omitempty" validate:"repeat"`
}

func (e CountdownEvent) HasImage() bool {
	return len(e.ImageData) > 0
}

// Color decodes ColorHex, falling back to DefaultColorHex when it is malformed.
func (e CountdownEvent) Color() Color {
	c, err := DecodeHex(e.ColorHex)
	if err != nil {
		c, _ = DecodeHex(DefaultColorHex)
	}
	return c
}

// Remaining renders the time left until the event's effective target.
func (e CountdownEvent) Remaining(now time.Time) string {
	return FormatRemaining(now, e.EffectiveTarget(now))
}

// EffectiveTarget is TargetDate for one-shot events and the next occurrence at or after
// now for repeating ones.
func (e CountdownEvent) EffectiveTarget(now time.Time) time.Time {
	if strings.TrimSpace(e.Repeat) == "" {
		return e.TargetDate
	}
	next, ok := NextOccurrence(e.TargetDate, e.Repeat, now)
	if !ok {
		return e.TargetDate
	}
	return next
}

// DisplayTitle never returns an empty string; legacy blobs may carry blank titles.
func (e CountdownEvent) DisplayTitle() string {
	t := strings.TrimSpace(e.Title)
	if t == "" {
		return "(untitled)"
	}
	return t
}

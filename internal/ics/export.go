package ics

import (
	"io"
	"strings"
	"time"

	"countdown-cli/internal/model"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//countdown-cli//countdown events//EN"

// propertyColor is the RFC 7986 COLOR property; we store the accent as #RRGGBB.
const propertyColor = ical.ComponentProperty("COLOR")

// Export writes events as an iCalendar stream, one VEVENT per countdown with the
// target date as a zero-length DTSTART/DTEND. Images stay local and are not exported.
func Export(w io.Writer, events []model.CountdownEvent, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(e.TargetDate.UTC())
		ve.SetEndAt(e.TargetDate.UTC())
		ve.SetSummary(e.Title)
		ve.SetProperty(propertyColor, e.ColorHex)
		if rule := model.RRuleFor(e.Repeat); rule != "" {
			ve.SetProperty(ical.ComponentPropertyRrule, rule)
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

// Import reads VEVENTs back into countdown events. The UID becomes the event id and a
// missing or malformed COLOR falls back to defaultColor. VEVENTs without a start or with
// a UID that cannot be an event id are skipped; the count of skipped entries is returned.
func Import(r io.Reader, defaultColor string) ([]model.CountdownEvent, int, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, 0, err
	}

	var out []model.CountdownEvent
	skipped := 0
	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve, defaultColor)
		if !ok {
			skipped++
			continue
		}
		out = append(out, ev)
	}
	return out, skipped, nil
}

func parseVEvent(ve *ical.VEvent, defaultColor string) (model.CountdownEvent, bool) {
	var ev model.CountdownEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		ev.ID = strings.TrimSpace(p.Value)
	}
	if ev.ID != "" && !model.ValidID(ev.ID) {
		return model.CountdownEvent{}, false
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Title = p.Value
	}
	if strings.TrimSpace(ev.Title) == "" {
		ev.Title = "(untitled)"
	}

	start, err := ve.GetStartAt()
	if err != nil || start.IsZero() {
		return model.CountdownEvent{}, false
	}
	ev.TargetDate = start

	ev.ColorHex = defaultColor
	if p := ve.GetProperty(propertyColor); p != nil {
		if hex, err := model.CanonicalHex(p.Value); err == nil {
			ev.ColorHex = hex
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && model.ValidRepeat(p.Value) {
		ev.Repeat = repeatKeyword(p.Value)
	}
	return ev, true
}

// repeatKeyword maps the simple rules we export back to their shorthand.
func repeatKeyword(rule string) string {
	rule = strings.TrimSpace(rule)
	for _, kw := range model.RepeatKeywords() {
		if kw != "" && strings.EqualFold(model.RRuleFor(kw), rule) {
			return kw
		}
	}
	return rule
}


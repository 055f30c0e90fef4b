package ics

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"countdown-cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []model.CountdownEvent{
		{
			ID:         "launch-1",
			Title:      "Launch",
			TargetDate: time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC),
			ColorHex:   "#FF9500",
			ImageData:  []byte("not exported"),
		},
		{
			ID:         "bday-1",
			Title:      "Birthday",
			TargetDate: time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC),
			ColorHex:   "#AF52DE",
			Repeat:     model.RepeatYearly,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, events, now))
	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "RRULE:FREQ=YEARLY")
	assert.NotContains(t, out, "not exported")

	got, skipped, err := Import(strings.NewReader(out), model.DefaultColorHex)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, got, 2)

	byID := map[string]model.CountdownEvent{}
	for _, ev := range got {
		byID[ev.ID] = ev
	}
	assert.Equal(t, "Launch", byID["launch-1"].Title)
	assert.True(t, byID["launch-1"].TargetDate.Equal(events[0].TargetDate))
	assert.Equal(t, "#FF9500", byID["launch-1"].ColorHex)
	assert.Nil(t, byID["launch-1"].ImageData)
	assert.Equal(t, model.RepeatYearly, byID["bday-1"].Repeat)
}

func TestExportImport_RoundTripKeepsEscapedTitles(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	titles := []string{`C:\new\path`, `a\,b`, "Dinner, drinks; dancing"}

	var events []model.CountdownEvent
	for i, title := range titles {
		events = append(events, model.CountdownEvent{
			ID:         fmt.Sprintf("t-%d", i),
			Title:      title,
			TargetDate: time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC),
			ColorHex:   "#FF9500",
		})
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, events, now))

	got, _, err := Import(strings.NewReader(buf.String()), model.DefaultColorHex)
	require.NoError(t, err)
	require.Len(t, got, len(titles))
	for _, ev := range got {
		var i int
		_, err := fmt.Sscanf(ev.ID, "t-%d", &i)
		require.NoError(t, err)
		assert.Equal(t, titles[i], ev.Title)
	}
}

func TestImport_SkipsUnsafeUIDs(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:../../escaped",
		"SUMMARY:Sneaky",
		"DTSTART:20261010T090000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:fine-1",
		"SUMMARY:Fine",
		"DTSTART:20261011T090000Z",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	got, skipped, err := Import(strings.NewReader(body), "#34C759")
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, got, 1)
	assert.Equal(t, "fine-1", got[0].ID)
}

func TestImport_DefaultsColorAndSkipsUndated(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:a",
		"SUMMARY:Dentist",
		"DTSTART:20261010T090000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"SUMMARY:No date",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	got, skipped, err := Import(strings.NewReader(body), "#34C759")
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, got, 1)
	assert.Equal(t, "Dentist", got[0].Title)
	assert.Equal(t, "#34C759", got[0].ColorHex)
	assert.Equal(t, time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC), got[0].TargetDate.UTC())
}

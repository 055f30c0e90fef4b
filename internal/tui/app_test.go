package tui

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"countdown-cli/internal/lib/logger/handlers/slogdiscard"
	"countdown-cli/internal/model"
	"countdown-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

func newTestModel(t *testing.T, seed ...model.CountdownEvent) (appModel, *store.EventStore) {
	t.Helper()

	dir := t.TempDir()
	ctx := context.Background()
	es, err := store.Open(ctx, dir)
	require.NoError(t, err)
	for _, e := range seed {
		_, err := es.Add(ctx, e)
		require.NoError(t, err)
	}

	m := newAppModel(ctx, store.Store{Dir: dir}, es, slogdiscard.NewDiscardLogger(), "")
	m.clock.now = testNow
	m.setEvents(es.Events(), "")
	return m, es
}

func listIDs(m appModel) []string {
	var ids []string
	for _, it := range m.list.Items() {
		ids = append(ids, it.(cardItem).event.ID)
	}
	return ids
}

func send(t *testing.T, m appModel, msgs ...tea.Msg) appModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(appModel)
		require.True(t, ok)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

func sampleEvent(id, title string, at time.Time) model.CountdownEvent {
	return model.CountdownEvent{ID: id, Title: title, TargetDate: at, ColorHex: "#34C759"}
}

func writePNG(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestAddThroughForm(t *testing.T) {
	m, es := newTestModel(t)

	m = send(t, m, keyRunes("a"))
	require.Equal(t, modeForm, m.mode)
	require.NotNil(t, m.form)
	assert.Equal(t, "blue", m.form.color.Value())

	m = send(t, m, keyRunes("Launch"), keyCtrlS)
	assert.Equal(t, modeList, m.mode)
	assert.Nil(t, m.form)

	events := es.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Launch", events[0].Title)
	assert.Equal(t, model.DefaultColorHex, events[0].ColorHex)
	assert.True(t, events[0].TargetDate.Equal(testNow.Add(24*time.Hour).Truncate(time.Hour)))

	require.Len(t, m.list.Items(), 1)
	got, ok := selectedEvent(m.list)
	require.True(t, ok)
	assert.Equal(t, events[0].ID, got.ID)
}

func TestSaveIgnoredWhileTitleEmpty(t *testing.T) {
	m, es := newTestModel(t)

	m = send(t, m, keyRunes("a"), keyRunes("   "), keyCtrlS)
	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, "title is required", m.form.err)
	assert.Equal(t, 0, es.Len())
	assert.Contains(t, m.View(), "needs a title")

	m = send(t, m, keyEsc)
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, 0, es.Len())
}

func TestEditReplacesEvent(t *testing.T) {
	m, es := newTestModel(t, sampleEvent("ev-1", "Trip", testNow.Add(72*time.Hour)))

	m = send(t, m, keyRunes("e"))
	require.Equal(t, modeForm, m.mode)
	require.True(t, m.form.editing)
	assert.Equal(t, "Trip", m.form.title.Value())
	assert.Equal(t, "green", m.form.color.Value())

	m.form.title.SetValue("Road trip")
	// Two tabs reach the color field; right steps green -> teal.
	m = send(t, m, keyTab, keyTab, keyRight, keyCtrlS)
	require.Equal(t, modeList, m.mode)

	got, ok := es.Get("ev-1")
	require.True(t, ok)
	assert.Equal(t, "Road trip", got.Title)
	assert.Equal(t, "#30B0C7", got.ColorHex)
	assert.Equal(t, 1, es.Len())
}

func TestEditKeepsTargetSecondsWhenDateUntouched(t *testing.T) {
	at := time.Date(2026, 12, 24, 18, 30, 45, 0, time.UTC)
	m, es := newTestModel(t, sampleEvent("ev-1", "Xmas", at))

	m = send(t, m, keyRunes("e"), keyRunes("!"), keyCtrlS)
	require.Equal(t, modeList, m.mode)

	got, ok := es.Get("ev-1")
	require.True(t, ok)
	assert.Equal(t, "Xmas!", got.Title)
	assert.True(t, got.TargetDate.Equal(at), "target changed to %s", got.TargetDate)
}

func TestEditedDateIsParsed(t *testing.T) {
	at := time.Date(2026, 12, 24, 18, 30, 45, 0, time.UTC)
	m, es := newTestModel(t, sampleEvent("ev-1", "Xmas", at))

	m = send(t, m, keyRunes("e"))
	m.form.target.SetValue("2026-12-25 08:15")
	m = send(t, m, keyCtrlS)
	require.Equal(t, modeList, m.mode)

	got, ok := es.Get("ev-1")
	require.True(t, ok)
	assert.True(t, got.TargetDate.Equal(time.Date(2026, 12, 25, 8, 15, 0, 0, time.Local)))
}

func TestFormRejectsBadDate(t *testing.T) {
	m, es := newTestModel(t)

	m = send(t, m, keyRunes("a"), keyRunes("Party"))
	m.form.target.SetValue("next friday")
	m = send(t, m, keyCtrlS)

	assert.Equal(t, modeForm, m.mode)
	assert.Contains(t, m.form.err, "date")
	assert.Equal(t, 0, es.Len())
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, es := newTestModel(t,
		sampleEvent("ev-1", "First", testNow.Add(time.Hour)),
		sampleEvent("ev-2", "Second", testNow.Add(2*time.Hour)),
	)

	m = send(t, m, keyRunes("d"))
	require.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "First")

	// Enter on the default (cancel) button keeps the event.
	m = send(t, m, keyEnter)
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, 2, es.Len())

	m = send(t, m, keyRunes("d"), keyEsc)
	assert.Equal(t, 2, es.Len())

	m = send(t, m, keyRunes("d"), keyRunes("y"))
	assert.Equal(t, modeList, m.mode)
	require.Equal(t, 1, es.Len())
	_, ok := es.Get("ev-1")
	assert.False(t, ok)
	require.Len(t, m.list.Items(), 1)
}

func TestStaleImageLoadIsIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	dir := t.TempDir()
	red := writePNG(t, dir, "red.png", color.RGBA{R: 255, A: 255})
	blue := writePNG(t, dir, "blue.png", color.RGBA{B: 255, A: 255})

	m = send(t, m, keyRunes("a"))

	first := m.startImageLoad(red)
	second := m.startImageLoad(blue)
	firstMsg := first().(imageLoadedMsg)
	secondMsg := second().(imageLoadedMsg)
	require.NoError(t, firstMsg.err)
	require.NoError(t, secondMsg.err)

	// The older pick finishes last but must not win.
	m = send(t, m, secondMsg, firstMsg)
	assert.Equal(t, 0, m.form.pendingLoad)
	assert.Equal(t, secondMsg.data, m.form.imageData)
	assert.Contains(t, m.form.imageName, "blue.png")
	assert.Equal(t, dir, m.state.ImageDir)
}

func TestImageLoadAfterCancelIsDropped(t *testing.T) {
	m, es := newTestModel(t)
	path := writePNG(t, t.TempDir(), "red.png", color.RGBA{R: 255, A: 255})

	m = send(t, m, keyRunes("a"))
	load := m.startImageLoad(path)
	m = send(t, m, keyEsc)
	require.Nil(t, m.form)

	m = send(t, m, load())
	assert.Nil(t, m.form)

	// A new form does not pick up the orphaned result either.
	m = send(t, m, keyRunes("a"), load())
	assert.Empty(t, m.form.imageData)
	assert.Equal(t, 0, es.Len())
}

func TestSaveWaitsForImageLoad(t *testing.T) {
	m, es := newTestModel(t)
	path := writePNG(t, t.TempDir(), "red.png", color.RGBA{R: 255, A: 255})

	m = send(t, m, keyRunes("a"), keyRunes("Beach"))
	load := m.startImageLoad(path)
	m = send(t, m, keyCtrlS)
	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, 0, es.Len())

	m = send(t, m, load(), keyCtrlS)
	assert.Equal(t, modeList, m.mode)
	events := es.Events()
	require.Len(t, events, 1)
	assert.True(t, events[0].HasImage())
}

func TestTickAdvancesClock(t *testing.T) {
	m, _ := newTestModel(t)
	later := testNow.Add(time.Second)

	next, cmd := m.Update(tickMsg(later))
	m = next.(appModel)
	assert.True(t, m.clock.now.Equal(later))
	assert.NotNil(t, cmd)
}

func TestRenderCardShowsRemaining(t *testing.T) {
	e := sampleEvent("ev-1", "Release", testNow.Add(49*time.Hour))

	out := renderCard(newCardItem(e, nil), testNow, 40, true)
	assert.Contains(t, out, "Release")
	assert.Contains(t, out, "2d")

	out = renderCard(newCardItem(e, nil), e.TargetDate.Add(time.Minute), 40, false)
	assert.Contains(t, out, "Now!")
}

func TestRenderCardUsesImageTint(t *testing.T) {
	path := writePNG(t, t.TempDir(), "white.png", color.RGBA{R: 255, G: 255, B: 255, A: 255})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	e := sampleEvent("ev-1", "Snow", testNow.Add(time.Hour))
	e.ImageData = data
	it := newCardItem(e, nil)
	require.NotNil(t, it.imageTint)
	assert.Equal(t, "#FFFFFF", model.EncodeHex(*it.imageTint))
	assert.Contains(t, renderCard(it, testNow, 40, false), "1h")
}

func TestSelectionRestoredFromState(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	es, err := store.Open(ctx, dir)
	require.NoError(t, err)
	for _, e := range []model.CountdownEvent{
		sampleEvent("ev-1", "First", testNow.Add(time.Hour)),
		sampleEvent("ev-2", "Second", testNow.Add(2*time.Hour)),
	} {
		_, err := es.Add(ctx, e)
		require.NoError(t, err)
	}
	st := store.Store{Dir: dir}
	require.NoError(t, st.SaveTUIState(&store.TUIState{SelectedEventID: "ev-2"}))

	m := newAppModel(ctx, st, es, slogdiscard.NewDiscardLogger(), "")
	got, ok := selectedEvent(m.list)
	require.True(t, ok)
	assert.Equal(t, "ev-2", got.ID)
}

func TestHelpAndEmptyViews(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "No countdowns yet")

	m = send(t, m, keyRunes("?"))
	require.Equal(t, modeHelp, m.mode)
	assert.True(t, strings.Contains(m.View(), "add an event"))

	m = send(t, m, keyEsc)
	assert.Equal(t, modeList, m.mode)
}

func TestTintCacheReusesDecodedImage(t *testing.T) {
	dir := t.TempDir()
	white, err := os.ReadFile(writePNG(t, dir, "white.png", color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	require.NoError(t, err)
	red, err := os.ReadFile(writePNG(t, dir, "red.png", color.RGBA{R: 255, A: 255}))
	require.NoError(t, err)

	tints := newTintCache()
	e := sampleEvent("ev-1", "Snow", testNow.Add(time.Hour))
	e.ImageData = white

	first := tints.tintFor(e)
	require.NotNil(t, first)
	assert.Same(t, first, tints.tintFor(e))

	e.ImageData = red
	second := tints.tintFor(e)
	require.NotNil(t, second)
	assert.Equal(t, "#FF0000", model.EncodeHex(*second))

	tints.retain(nil)
	assert.Empty(t, tints.byID)
}

func TestCardsOrderedByNextOccurrence(t *testing.T) {
	anchored := sampleEvent("yearly", "Anniversary", time.Date(2020, 3, 1, 12, 0, 0, 0, time.Local))
	anchored.Repeat = model.RepeatYearly
	soon := sampleEvent("soon", "Soon", testNow.Add(48*time.Hour))

	m, es := newTestModel(t, anchored, soon)
	assert.Equal(t, "yearly", es.Events()[0].ID)
	assert.Equal(t, []string{"soon", "yearly"}, listIDs(m))
}

func TestTickResortsWhenRepeatRollsOver(t *testing.T) {
	tomorrow := testNow.Add(24 * time.Hour)
	yearly := sampleEvent("yearly", "Anniversary", tomorrow.AddDate(-3, 0, 0))
	yearly.Repeat = model.RepeatYearly
	later := sampleEvent("later", "Later", testNow.Add(36*time.Hour))

	m, _ := newTestModel(t, yearly, later)
	require.Equal(t, []string{"yearly", "later"}, listIDs(m))

	m = send(t, m, tickMsg(testNow.Add(25*time.Hour)))
	assert.Equal(t, []string{"later", "yearly"}, listIDs(m))
	got, ok := selectedEvent(m.list)
	require.True(t, ok)
	assert.Equal(t, "yearly", got.ID)
}

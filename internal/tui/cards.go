package tui

import (
	"fmt"
	"hash/crc32"
	"io"
	"sort"
	"strings"
	"time"

	"countdown-cli/internal/imaging"
	"countdown-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clock is shared by the model and the card delegate so a tick re-renders every card
// without rebuilding the list.
type clock struct {
	now time.Time
}

type cardItem struct {
	event model.CountdownEvent

	// imageTint is the average color of the event image, when it decodes.
	imageTint *model.Color
}

// newCardItem builds a card, taking the image tint from tints when it already holds one
// for the same bytes. tints may be nil.
func newCardItem(e model.CountdownEvent, tints *tintCache) cardItem {
	it := cardItem{event: e}
	if tints != nil {
		it.imageTint = tints.tintFor(e)
		return it
	}
	if c, ok := imaging.AverageColor(e.ImageData); ok {
		it.imageTint = &c
	}
	return it
}

type tintEntry struct {
	sum  uint32
	size int
	tint *model.Color
}

// tintCache keeps image tints per event id so rebuilding the list does not decode every
// image again. Entries are keyed by a checksum of the bytes; a replaced image misses.
type tintCache struct {
	byID map[string]tintEntry
}

func newTintCache() *tintCache {
	return &tintCache{byID: map[string]tintEntry{}}
}

func (c *tintCache) tintFor(e model.CountdownEvent) *model.Color {
	if !e.HasImage() {
		delete(c.byID, e.ID)
		return nil
	}
	sum := crc32.ChecksumIEEE(e.ImageData)
	if ent, ok := c.byID[e.ID]; ok && ent.sum == sum && ent.size == len(e.ImageData) {
		return ent.tint
	}
	ent := tintEntry{sum: sum, size: len(e.ImageData)}
	if col, ok := imaging.AverageColor(e.ImageData); ok {
		ent.tint = &col
	}
	c.byID[e.ID] = ent
	return ent.tint
}

// retain drops entries for events no longer shown.
func (c *tintCache) retain(events []model.CountdownEvent) {
	keep := make(map[string]bool, len(events))
	for _, e := range events {
		keep[e.ID] = true
	}
	for id := range c.byID {
		if !keep[id] {
			delete(c.byID, id)
		}
	}
}

// sortForDisplay orders cards by the date they show: the next occurrence for repeating
// events, the stored target otherwise.
func sortForDisplay(events []model.CountdownEvent, now time.Time) {
	sort.SliceStable(events, func(i, j int) bool {
		return displayBefore(events[i], events[j], now)
	})
}

func displayBefore(a, b model.CountdownEvent, now time.Time) bool {
	at, bt := a.EffectiveTarget(now), b.EffectiveTarget(now)
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}

func (it cardItem) FilterValue() string { return it.event.Title }

type cardDelegate struct {
	clock *clock
}

func newCardDelegate(c *clock) cardDelegate {
	return cardDelegate{clock: c}
}

func (d cardDelegate) Height() int  { return 5 } // 3 inner lines + border top/bottom
func (d cardDelegate) Spacing() int { return 1 }
func (d cardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(cardItem)
	if !ok {
		return
	}
	totalW := m.Width()
	if totalW < 12 {
		return
	}
	fmt.Fprint(w, renderCard(it, d.clock.now, totalW, index == m.Index()))
}

// renderCard draws one event: title, time remaining, then the target date. The border
// uses the accent color; image-backed cards are filled with the image's average color.
func renderCard(it cardItem, now time.Time, totalW int, selected bool) string {
	e := it.event
	accent := e.Color()

	card := lipgloss.NewStyle().
		Padding(0, 1, 0, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(hexColor(model.Dim(accent, surfaceBase(), 0.45))).
		Foreground(colorSurfaceFg)
	if selected {
		card = card.Border(lipgloss.ThickBorder()).BorderForeground(hexColor(accent))
	}

	titleSt := lipgloss.NewStyle().Bold(true)
	remainingSt := lipgloss.NewStyle().Bold(true).Foreground(hexColor(accent))
	metaSt := lipgloss.NewStyle().Foreground(colorCardMetaFg)

	switch {
	case it.imageTint != nil:
		bg := *it.imageTint
		fg := hexColor(model.ContrastText(bg))
		card = card.Background(hexColor(bg)).Foreground(fg)
		titleSt = titleSt.Foreground(fg).Background(hexColor(bg))
		remainingSt = remainingSt.Foreground(fg).Background(hexColor(bg))
		metaSt = metaSt.Foreground(fg).Background(hexColor(bg))
	case selected:
		bg := model.Dim(accent, surfaceBase(), 0.82)
		card = card.Background(hexColor(bg))
		titleSt = titleSt.Background(hexColor(bg))
		remainingSt = remainingSt.Background(hexColor(bg))
		metaSt = metaSt.Background(hexColor(bg))
	}

	innerW := totalW - card.GetHorizontalFrameSize()
	if innerW < 1 {
		innerW = 1
	}
	card = card.Width(innerW)

	target := e.EffectiveTarget(now)
	meta := target.Local().Format("Mon 02 Jan 2006 15:04")
	if strings.TrimSpace(e.Repeat) != "" {
		meta += "  ·  repeats " + e.Repeat
	}
	if e.HasImage() && it.imageTint == nil {
		meta += "  ·  image"
	}

	lines := []string{
		titleSt.Render(truncateToWidth(e.DisplayTitle(), innerW)),
		remainingSt.Render(model.FormatRemaining(now, target)),
		metaSt.Render(truncateToWidth(meta, innerW)),
	}
	return card.Render(strings.Join(lines, "\n"))
}

func newCardList(c *clock) list.Model {
	l := list.New([]list.Item{}, newCardDelegate(c), 0, 0)
	l.Title = "Countdowns"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("event", "events")
	// q/ctrl+c and esc are handled by the app model.
	l.DisableQuitKeybindings()
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(colorSelectedFg).
		Background(colorSelectedBg)
	return l
}

func selectListItemByID(l *list.Model, id string) {
	for i, item := range l.Items() {
		if it, ok := item.(cardItem); ok && it.event.ID == id {
			l.Select(i)
			return
		}
	}
}

func selectedEvent(l list.Model) (model.CountdownEvent, bool) {
	it, ok := l.SelectedItem().(cardItem)
	if !ok {
		return model.CountdownEvent{}, false
	}
	return it.event, true
}

package tui

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"countdown-cli/internal/docs"
	"countdown-cli/internal/lib/logger/sl"
	"countdown-cli/internal/model"
	"countdown-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
	modeHelp
)

type tickMsg time.Time

func tickEverySecond() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// eventFeed receives store change notifications. The model is copied on every Update,
// so the hook writes here and the model picks it up.
type eventFeed struct {
	events []model.CountdownEvent
	dirty  bool
}

type appModel struct {
	ctx          context.Context
	store        store.Store
	events       *store.EventStore
	log          *slog.Logger
	defaultColor string

	width  int
	height int

	clock *clock
	feed  *eventFeed
	tints *tintCache

	// shown is the event list the cards were built from, in store order.
	shown []model.CountdownEvent
	list  list.Model
	mode  mode

	form    *eventForm
	confirm *confirmDelete
	help    string
	flash   string

	// loadSeq numbers image loads; see eventForm.pendingLoad.
	loadSeq int

	state *store.TUIState
}

func newAppModel(ctx context.Context, st store.Store, es *store.EventStore, log *slog.Logger, defaultColor string) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(defaultColor) == "" {
		defaultColor = model.DefaultColorHex
	}
	c := &clock{now: time.Now()}
	m := appModel{
		ctx:          ctx,
		store:        st,
		events:       es,
		log:          log,
		defaultColor: defaultColor,
		width:        80,
		height:       24,
		clock:        c,
		feed:         &eventFeed{},
		tints:        newTintCache(),
		list:         newCardList(c),
		mode:         modeList,
	}

	feed := m.feed
	es.OnChange(func(evs []model.CountdownEvent) {
		feed.events = evs
		feed.dirty = true
	})

	state, err := st.LoadTUIState()
	if err != nil || state == nil {
		state = &store.TUIState{Version: 1}
	}
	m.state = state

	m.setEvents(es.Events(), state.SelectedEventID)
	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd { return tickEverySecond() }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		m.clock.now = time.Time(msg)
		m.resortIfDue()
		return m, tickEverySecond()

	case imageLoadedMsg:
		m.applyImageLoad(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.saveState()
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeHelp:
			switch msg.String() {
			case "esc", "q", "?", "enter":
				m.mode = modeList
			}
			return m, nil
		}
		return m.updateList(msg)
	}

	// Non-key messages (filepicker directory reads, list filter results).
	if m.mode == modeForm && m.form != nil && m.form.picking {
		var cmd tea.Cmd
		m.form.picker, cmd = m.form.picker.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While typing a filter every key belongs to the list.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	m.flash = ""
	switch msg.String() {
	case "q":
		m.saveState()
		return m, tea.Quit
	case "a":
		cmd := m.openForm(model.CountdownEvent{
			TargetDate: m.clock.now.Add(24 * time.Hour).Truncate(time.Hour),
			ColorHex:   m.defaultColor,
		}, false)
		return m, cmd
	case "e", "enter":
		if e, ok := selectedEvent(m.list); ok {
			cmd := m.openForm(e, true)
			return m, cmd
		}
		return m, nil
	case "d", "delete":
		if e, ok := selectedEvent(m.list); ok {
			m.confirm = &confirmDelete{id: e.ID, title: e.DisplayTitle(), focus: confirmFocusCancel}
			m.mode = modeConfirmDelete
		}
		return m, nil
	case "?":
		body, _ := docs.Get("keys")
		m.help = RenderMarkdown(body, m.width-4)
		m.mode = modeHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *appModel) openForm(e model.CountdownEvent, editing bool) tea.Cmd {
	m.form = newEventForm(e, editing)
	m.form.resize(m.width)
	m.mode = modeForm
	return m.form.title.Focus()
}

func (m *appModel) closeForm() {
	// Dropping the form orphans any in-flight image load.
	m.form = nil
	m.mode = modeList
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.mode = modeList
		return m, nil
	}

	if f.picking {
		if msg.String() == "esc" {
			f.picking = false
			return m, nil
		}
		var cmd tea.Cmd
		f.picker, cmd = f.picker.Update(msg)
		if ok, path := f.picker.DidSelectFile(msg); ok {
			f.picking = false
			load := m.startImageLoad(path)
			return m, tea.Batch(cmd, load)
		}
		if ok, path := f.picker.DidSelectDisabledFile(msg); ok {
			f.err = filepath.Base(path) + " is not a png, jpeg or gif image"
		}
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "ctrl+s":
		m.submitForm()
		return m, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	}

	switch f.focus {
	case fieldColor:
		switch msg.String() {
		case "left":
			f.cycleColor(-1)
			return m, nil
		case "right":
			f.cycleColor(1)
			return m, nil
		}
	case fieldRepeat:
		switch msg.String() {
		case "left":
			f.cycleRepeat(-1)
			return m, nil
		case "right":
			f.cycleRepeat(1)
			return m, nil
		}
	case fieldImage:
		switch msg.String() {
		case "enter", " ":
			cmd := m.openImagePicker()
			return m, cmd
		case "x", "backspace":
			f.clearImage()
		}
		return m, nil
	}

	if msg.String() == "enter" {
		f.setFocus(f.focus + 1)
		return m, nil
	}

	in := f.focused()
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	f.err = ""
	return m, cmd
}

func (m *appModel) openImagePicker() tea.Cmd {
	startDir := strings.TrimSpace(m.state.ImageDir)
	if startDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			startDir = home
		}
	}
	h := m.height - 14
	if h < 5 {
		h = 5
	}
	m.form.picker = newImagePicker(startDir, h)
	m.form.picking = true
	return m.form.picker.Init()
}

// startImageLoad reads path in the background. A later pick or closing the form
// supersedes this load.
func (m *appModel) startImageLoad(path string) tea.Cmd {
	m.loadSeq++
	m.form.pendingLoad = m.loadSeq
	m.form.err = ""
	m.state.ImageDir = filepath.Dir(path)
	return loadImageCmd(m.loadSeq, path)
}

func (m *appModel) applyImageLoad(msg imageLoadedMsg) {
	if m.form == nil || msg.seq == 0 || msg.seq != m.form.pendingLoad {
		m.log.Debug("dropping stale image load", slog.String("path", msg.path), slog.Int("seq", msg.seq))
		return
	}
	m.form.pendingLoad = 0
	if msg.err != nil {
		m.form.err = msg.err.Error()
		m.log.Warn("image load failed", slog.String("path", msg.path), sl.Err(msg.err))
		return
	}
	m.form.imageData = msg.data
	m.form.imageName = imageDisplayName(msg.path, len(msg.data))
}

func (m *appModel) submitForm() {
	f := m.form
	if !f.canSave() {
		f.err = errTitleRequired.Error()
		return
	}
	if f.pendingLoad != 0 {
		f.err = "image still loading"
		return
	}
	e, err := f.build(time.Local)
	if err != nil {
		f.err = err.Error()
		return
	}

	if f.editing {
		err = m.events.Update(m.ctx, e)
	} else {
		e, err = m.events.Add(m.ctx, e)
	}
	if err != nil {
		var verr model.ValidationError
		if errors.As(err, &verr) {
			f.err = verr.Error()
		} else {
			f.err = "save failed: " + err.Error()
			m.log.Error("failed to save event", slog.String("id", e.ID), sl.Err(err))
		}
		return
	}

	m.closeForm()
	m.syncFromStore(e.ID)
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	if c == nil {
		m.mode = modeList
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "left", "right":
		c.toggleFocus()
		return m, nil
	case "esc", "n":
		m.confirm = nil
		m.mode = modeList
		return m, nil
	case "y":
		m.deleteConfirmed()
		return m, nil
	case "enter":
		if c.focus == confirmFocusConfirm {
			m.deleteConfirmed()
		} else {
			m.confirm = nil
			m.mode = modeList
		}
		return m, nil
	}
	return m, nil
}

func (m *appModel) deleteConfirmed() {
	id := m.confirm.id
	m.confirm = nil
	m.mode = modeList
	if err := m.events.Delete(m.ctx, id); err != nil {
		m.flash = "delete failed: " + err.Error()
		m.log.Error("failed to delete event", slog.String("id", id), sl.Err(err))
		return
	}
	m.syncFromStore("")
}

// syncFromStore rebuilds the cards after a store change, selecting selectID when set
// and otherwise keeping the current selection.
func (m *appModel) syncFromStore(selectID string) {
	if !m.feed.dirty {
		return
	}
	m.feed.dirty = false
	if selectID == "" {
		if e, ok := selectedEvent(m.list); ok {
			selectID = e.ID
		}
	}
	m.setEvents(m.feed.events, selectID)
}

func (m *appModel) setEvents(events []model.CountdownEvent, selectID string) {
	m.shown = events
	ordered := append([]model.CountdownEvent(nil), events...)
	sortForDisplay(ordered, m.clock.now)
	m.tints.retain(ordered)

	items := make([]list.Item, 0, len(ordered))
	for _, e := range ordered {
		items = append(items, newCardItem(e, m.tints))
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if selectID != "" {
		selectListItemByID(&m.list, selectID)
	} else if idx < len(items) {
		m.list.Select(idx)
	}
}

// resortIfDue rebuilds the cards when a repeating event rolled over to its next
// occurrence and the shown order no longer matches.
func (m *appModel) resortIfDue() {
	items := m.list.Items()
	for i := 1; i < len(items); i++ {
		prev, ok1 := items[i-1].(cardItem)
		cur, ok2 := items[i].(cardItem)
		if ok1 && ok2 && displayBefore(cur.event, prev.event, m.clock.now) {
			selectID := ""
			if e, ok := selectedEvent(m.list); ok {
				selectID = e.ID
			}
			m.setEvents(m.shown, selectID)
			return
		}
	}
}

func (m *appModel) resize() {
	h := m.height - 2 // footer
	if h < 6 {
		h = 6
	}
	m.list.SetSize(m.width, h)
	if m.form != nil {
		m.form.resize(m.width)
	}
}

func (m *appModel) saveState() {
	if e, ok := selectedEvent(m.list); ok {
		m.state.SelectedEventID = e.ID
	}
	if err := m.store.SaveTUIState(m.state); err != nil {
		m.log.Debug("failed to save tui state", sl.Err(err))
	}
}

func (m appModel) View() string {
	switch m.mode {
	case modeForm:
		if m.form != nil {
			return placeCenter(m.width, m.height, m.form.view(m.width, m.clock.now))
		}
	case modeConfirmDelete:
		if m.confirm != nil {
			body := "Delete “" + m.confirm.title + "”? This cannot be undone."
			return placeCenter(m.width, m.height, renderConfirmModal(m.width, "Delete countdown", body, "Delete", "Cancel", m.confirm.focus))
		}
	case modeHelp:
		return m.help + "\n\n" + styleMuted().Render("esc/q/?: close help")
	}

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = lipgloss.NewStyle().Padding(1, 2).Render(
			styleMuted().Render("No countdowns yet. Press a to add one."),
		)
	}
	return body + "\n" + m.footer()
}

func (m appModel) footer() string {
	if m.flash != "" {
		return lipgloss.NewStyle().Foreground(colorFlashErrorFg).Render(truncateToWidth(m.flash, m.width))
	}
	return styleMuted().Render(truncateToWidth("a: add  e/enter: edit  d: delete  /: filter  ?: help  q: quit", m.width))
}

package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"countdown-cli/internal/imaging"
	"countdown-cli/internal/model"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField int

const (
	fieldTitle formField = iota
	fieldTarget
	fieldColor
	fieldRepeat
	fieldImage
	fieldCount
)

const targetLayout = "2006-01-02 15:04"

var errTitleRequired = errors.New("title is required")

// eventForm is the in-progress add/edit state. Nothing reaches the store until save.
type eventForm struct {
	editing bool
	base    model.CountdownEvent

	focus  formField
	title  textinput.Model
	target textinput.Model
	color  textinput.Model
	repeat textinput.Model

	// targetText is the prefilled date text. While the input still shows it, build keeps
	// base.TargetDate so seconds below the layout's precision survive an edit.
	targetText string

	imageData []byte
	imageName string

	// pendingLoad is the sequence number of the image load this form is waiting for
	// (0: none). Results carrying any other number are dropped.
	pendingLoad int

	picking bool
	picker  filepicker.Model

	err string
}

// imageLoadedMsg carries the result of an async image read.
type imageLoadedMsg struct {
	seq  int
	path string
	data []byte
	err  error
}

func loadImageCmd(seq int, path string) tea.Cmd {
	return func() tea.Msg {
		b, err := imaging.LoadFile(path)
		return imageLoadedMsg{seq: seq, path: path, data: b, err: err}
	}
}

func newFormInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorSurfaceFg)
	ti.PlaceholderStyle = styleMuted()
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorAccent)
	return ti
}

// newEventForm prefills the inputs from e. editing is false for new events.
func newEventForm(e model.CountdownEvent, editing bool) *eventForm {
	f := &eventForm{
		editing:   editing,
		base:      e,
		title:     newFormInput("What are you counting down to?", 120),
		target:    newFormInput(targetLayout, len(targetLayout)),
		color:     newFormInput("blue or #RRGGBB", 7),
		repeat:    newFormInput("none", 200),
		imageData: e.ImageData,
	}
	f.title.SetValue(e.Title)
	if !e.TargetDate.IsZero() {
		f.targetText = e.TargetDate.Local().Format(targetLayout)
		f.target.SetValue(f.targetText)
	}
	if name, ok := model.PaletteName(e.ColorHex); ok {
		f.color.SetValue(name)
	} else {
		f.color.SetValue(e.ColorHex)
	}
	f.repeat.SetValue(e.Repeat)
	if e.HasImage() {
		f.imageName = fmt.Sprintf("current image (%d KB)", (len(e.ImageData)+1023)/1024)
	}
	f.setFocus(fieldTitle)
	return f
}

func (f *eventForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.title, &f.target, &f.color, &f.repeat}
}

func (f *eventForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	for i, in := range f.inputs() {
		if formField(i) == f.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (f *eventForm) focused() *textinput.Model {
	ins := f.inputs()
	if int(f.focus) < len(ins) {
		return ins[f.focus]
	}
	return nil
}

// canSave is false while the title is blank; ctrl+s is ignored then.
func (f *eventForm) canSave() bool {
	return strings.TrimSpace(f.title.Value()) != ""
}

func (f *eventForm) cycleColor(dir int) {
	names := model.PaletteNames()
	cur := strings.ToLower(strings.TrimSpace(f.color.Value()))
	if hex, err := model.ResolveColor(cur); err == nil {
		if name, ok := model.PaletteName(hex); ok {
			cur = name
		}
	}
	idx := -1
	for i, n := range names {
		if n == cur {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
		if dir < 0 {
			idx = len(names) - 1
		}
	} else {
		idx = (idx + dir + len(names)) % len(names)
	}
	f.color.SetValue(names[idx])
	f.color.CursorEnd()
}

func (f *eventForm) cycleRepeat(dir int) {
	kws := model.RepeatKeywords()
	cur := strings.ToLower(strings.TrimSpace(f.repeat.Value()))
	idx := 0
	for i, k := range kws {
		if k == cur {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(kws)) % len(kws)
	f.repeat.SetValue(kws[idx])
	f.repeat.CursorEnd()
}

func (f *eventForm) clearImage() {
	f.imageData = nil
	f.imageName = ""
	f.pendingLoad = 0
}

// build turns the inputs into an event. Store-level validation still applies.
func (f *eventForm) build(loc *time.Location) (model.CountdownEvent, error) {
	if !f.canSave() {
		return model.CountdownEvent{}, errTitleRequired
	}
	if loc == nil {
		loc = time.Local
	}
	e := f.base
	e.Title = strings.TrimSpace(f.title.Value())

	text := strings.TrimSpace(f.target.Value())
	if f.targetText == "" || text != f.targetText {
		at, err := time.ParseInLocation(targetLayout, text, loc)
		if err != nil {
			return model.CountdownEvent{}, fmt.Errorf("date: expected %s", targetLayout)
		}
		e.TargetDate = at
	}

	hex, err := model.ResolveColor(f.color.Value())
	if err != nil {
		return model.CountdownEvent{}, fmt.Errorf("color: %w", err)
	}
	e.ColorHex = hex

	e.Repeat = strings.TrimSpace(f.repeat.Value())
	if !model.ValidRepeat(e.Repeat) {
		return model.CountdownEvent{}, fmt.Errorf("repeat: %q is not weekly|monthly|yearly or an RRULE", e.Repeat)
	}

	e.ImageData = f.imageData
	return e, nil
}

func newImagePicker(startDir string, height int) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".gif"}
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.Height = height
	fp.Cursor = "›"
	fp.KeyMap.Back = key.NewBinding(
		key.WithKeys("h", "backspace", "left"),
		key.WithHelp("h", "up"),
	)

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.DisabledFile = styleMuted()
	fp.Styles.DisabledSelected = styleMuted()
	fp.Styles.FileSize = styleMuted().Width(fp.Styles.FileSize.GetWidth()).Align(lipgloss.Right)

	if strings.TrimSpace(startDir) == "" {
		startDir = "."
	}
	fp.CurrentDirectory = startDir
	return fp
}

const formLabelWidth = 8

// resize fits the inputs to the modal for a terminal width.
func (f *eventForm) resize(width int) {
	for _, in := range f.inputs() {
		in.Width = modalBodyWidth(width) - formLabelWidth - 2
	}
}

func (f *eventForm) view(width int, now time.Time) string {
	bodyW := modalBodyWidth(width)
	labelW := formLabelWidth
	labelSt := lipgloss.NewStyle().Width(labelW).Foreground(colorCardMetaFg)
	activeLabelSt := labelSt.Bold(true).Foreground(colorAccent)

	row := func(field formField, label, value, hint string) string {
		ls := labelSt
		if f.focus == field {
			ls = activeLabelSt
		}
		line := ls.Render(label) + " " + value
		if hint != "" && f.focus == field {
			line += "  " + styleMuted().Render(hint)
		}
		return truncateToWidth(line, bodyW)
	}

	swatch := "  "
	if hex, err := model.ResolveColor(f.color.Value()); err == nil {
		swatch = lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
	}

	image := styleMuted().Render("none")
	switch {
	case f.pendingLoad != 0:
		image = styleMuted().Render("loading…")
	case f.imageName != "":
		image = f.imageName
	}

	lines := []string{
		row(fieldTitle, "Title", f.title.View(), ""),
		row(fieldTarget, "Date", f.target.View(), ""),
		row(fieldColor, "Color", swatch+" "+f.color.View(), "←/→ palette"),
		row(fieldRepeat, "Repeat", f.repeat.View(), "←/→ cycle"),
		row(fieldImage, "Image", image, "enter: pick  x: remove"),
		"",
	}

	if e, err := f.build(time.Local); err == nil {
		lines = append(lines, styleMuted().Render("remaining ")+lipgloss.NewStyle().Bold(true).Render(e.Remaining(now)))
	} else {
		lines = append(lines, "")
	}

	if f.err != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(colorFlashErrorFg).Render(truncateToWidth(f.err, bodyW)))
	}

	saveHint := "ctrl+s: save"
	if !f.canSave() {
		saveHint = "ctrl+s: save (needs a title)"
	}
	lines = append(lines, "", styleMuted().Render("tab: next field   "+saveHint+"   esc: cancel"))

	title := "New countdown"
	if f.editing {
		title = "Edit countdown"
	}

	if f.picking {
		pick := []string{
			styleMuted().Render(truncateToWidth(f.picker.CurrentDirectory, bodyW)),
			f.picker.View(),
			"",
			styleMuted().Render("enter: choose   h/←: up   esc: back"),
		}
		return renderModalBox(width, "Pick an image", strings.Join(pick, "\n"))
	}
	return renderModalBox(width, title, strings.Join(lines, "\n"))
}

func imageDisplayName(path string, size int) string {
	return fmt.Sprintf("%s (%d KB)", filepath.Base(path), (size+1023)/1024)
}

package cli

import (
	"errors"
	"strings"
	"time"

	"countdown-cli/internal/imaging"
	"countdown-cli/internal/model"
	"countdown-cli/internal/store"

	"github.com/spf13/cobra"
)

// eventView is the CLI shape of an event. Image bytes are summarized, not dumped.
type eventView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	TargetDate time.Time `json:"targetDate"`
	ColorHex   string    `json:"colorHex"`
	ColorName  string    `json:"colorName,omitempty"`
	Repeat     string    `json:"repeat,omitempty"`
	NextAt     time.Time `json:"nextAt"`
	HasImage   bool      `json:"hasImage"`
	ImageBytes int       `json:"imageBytes,omitempty"`
	Remaining  string    `json:"remaining"`
	Relative   string    `json:"relative"`
}

func toEventView(e model.CountdownEvent, now time.Time) eventView {
	next := e.EffectiveTarget(now)
	name, _ := model.PaletteName(e.ColorHex)
	return eventView{
		ID:         e.ID,
		Title:      e.Title,
		TargetDate: e.TargetDate,
		ColorHex:   e.ColorHex,
		ColorName:  name,
		Repeat:     e.Repeat,
		NextAt:     next,
		HasImage:   e.HasImage(),
		ImageBytes: len(e.ImageData),
		Remaining:  model.FormatRemaining(now, next),
		Relative:   model.DescribeTarget(now, next),
	}
}

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event", "ev"},
		Short:   "List and edit countdown events",
	}

	cmd.AddCommand(newEventsListCmd(app))
	cmd.AddCommand(newEventsShowCmd(app))
	cmd.AddCommand(newEventsAddCmd(app))
	cmd.AddCommand(newEventsEditCmd(app))
	cmd.AddCommand(newEventsDeleteCmd(app))

	return cmd
}

func newEventsListCmd(app *App) *cobra.Command {
	var upcoming bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events sorted by target date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			now := app.now()
			out := make([]eventView, 0, es.Len())
			for _, e := range es.Events() {
				if upcoming && !e.EffectiveTarget(now).After(now) {
					continue
				}
				out = append(out, toEventView(e, now))
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "Only events that have not been reached yet")

	return cmd
}

func newEventsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, ok := es.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("event", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": toEventView(e, app.now())})
		},
	}
}

// eventFlags are shared by add and edit; edit only applies flags that were set.
type eventFlags struct {
	title      string
	at         string
	color      string
	image      string
	clearImage bool
	repeat     string
}

func (f *eventFlags) bind(cmd *cobra.Command, withClear bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "Event title")
	cmd.Flags().StringVar(&f.at, "at", "", "Target date/time (YYYY-MM-DD, YYYY-MM-DD HH:MM, or RFC3339)")
	cmd.Flags().StringVar(&f.color, "color", "", "Accent color: palette name ("+strings.Join(model.PaletteNames(), "|")+") or #RRGGBB")
	cmd.Flags().StringVar(&f.image, "image", "", "Background image file (png, jpeg or gif)")
	cmd.Flags().StringVar(&f.repeat, "repeat", "", "Repeat: weekly|monthly|yearly or an RRULE (empty: one-shot)")
	if withClear {
		cmd.Flags().BoolVar(&f.clearImage, "clear-image", false, "Remove the background image")
	}
}

// apply copies the flags that were set on cmd onto e.
func (f *eventFlags) apply(cmd *cobra.Command, e *model.CountdownEvent) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		e.Title = f.title
	}
	if changed("at") {
		t, err := parseTarget(f.at, time.Local)
		if err != nil {
			return err
		}
		e.TargetDate = t
	}
	if changed("color") {
		hex, err := model.ResolveColor(f.color)
		if err != nil {
			return err
		}
		e.ColorHex = hex
	}
	if changed("repeat") {
		e.Repeat = strings.TrimSpace(f.repeat)
	}
	if f.clearImage {
		e.ImageData = nil
	}
	if changed("image") && strings.TrimSpace(f.image) != "" {
		b, err := imaging.LoadFile(f.image)
		if err != nil {
			return err
		}
		e.ImageData = b
	}
	return nil
}

func newEventsAddCmd(app *App) *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(f.title) == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			if strings.TrimSpace(f.at) == "" {
				return writeErr(cmd, errors.New("missing --at"))
			}

			e := model.CountdownEvent{ColorHex: app.cfg.DefaultColorHex()}
			if err := f.apply(cmd, &e); err != nil {
				return writeErr(cmd, err)
			}

			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			added, err := es.Add(cmd.Context(), e)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Debug("event added", "id", added.ID)
			return writeOut(cmd, app, map[string]any{"data": toEventView(added, app.now())})
		},
	}

	f.bind(cmd, false)

	return cmd
}

func newEventsEditCmd(app *App) *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "edit <event-id>",
		Short: "Change fields of an event (unset flags keep their value)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, ok := es.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("event", args[0]))
			}
			if err := f.apply(cmd, &e); err != nil {
				return writeErr(cmd, err)
			}
			if err := es.Update(cmd.Context(), e); err != nil {
				return writeErr(cmd, err)
			}
			updated, _ := es.Get(e.ID)
			app.log.Debug("event updated", "id", e.ID)
			return writeOut(cmd, app, map[string]any{"data": toEventView(updated, app.now())})
		},
	}

	f.bind(cmd, true)

	return cmd
}

func newEventsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <event-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			es, err := openEvents(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := es.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return writeErr(cmd, errNotFound("event", args[0]))
				}
				return writeErr(cmd, err)
			}
			app.log.Debug("event deleted", "id", args[0])
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
}

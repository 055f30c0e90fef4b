package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"countdown-cli/internal/model"
)

const dateLayout = "Mon 02 Jan 2006 15:04 MST"

type RenderOptions struct {
	// ImageFile is the image file name relative to the page; empty for none.
	ImageFile string
}

func RenderEventMarkdown(e model.CountdownEvent, now time.Time, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	next := e.EffectiveTarget(now)

	writeLn("# " + escapeInline(e.DisplayTitle()))
	writeLn("")
	if opt.ImageFile != "" {
		writeLn("![" + escapeInline(e.DisplayTitle()) + "](" + opt.ImageFile + ")")
		writeLn("")
	}
	writeLn("**" + model.FormatRemaining(now, next) + "** (" + model.DescribeTarget(now, next) + ")")
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + e.ID)
	writeLn("- Target: " + e.TargetDate.Format(dateLayout))
	if strings.TrimSpace(e.Repeat) != "" {
		writeLn("- Repeat: " + e.Repeat)
		writeLn("- Next: " + next.Format(dateLayout))
	}
	color := e.ColorHex
	if name, ok := model.PaletteName(e.ColorHex); ok {
		color = fmt.Sprintf("%s (%s)", e.ColorHex, name)
	}
	writeLn("- Color: " + color)

	return buf.String()
}

// RenderIndexMarkdown lists events in store order as a table linking each page.
func RenderIndexMarkdown(events []model.CountdownEvent, now time.Time) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Countdowns")
	writeLn("")
	if len(events) == 0 {
		writeLn("_No countdowns._")
		return buf.String()
	}

	writeLn("| Event | Target | Remaining |")
	writeLn("|---|---|---|")
	for _, e := range events {
		next := e.EffectiveTarget(now)
		writeLn(fmt.Sprintf("| [%s](events/%s.md) | %s | %s |",
			escapeTableCell(e.DisplayTitle()),
			e.ID,
			next.Format(dateLayout),
			model.FormatRemaining(now, next),
		))
	}
	return buf.String()
}

func escapeInline(s string) string {
	return strings.NewReplacer("\n", " ", "[", `\[`, "]", `\]`).Replace(s)
}

func escapeTableCell(s string) string {
	return strings.ReplaceAll(escapeInline(s), "|", `\|`)
}

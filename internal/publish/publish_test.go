package publish

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"countdown-cli/internal/model"
)

func TestRenderEventMarkdown_IncludesRemainingAndMeta(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := model.CountdownEvent{
		ID:         "ev-1",
		Title:      "Launch [beta]",
		TargetDate: now.Add(50 * time.Hour),
		ColorHex:   "#34C759",
		Repeat:     "weekly",
	}

	md := RenderEventMarkdown(e, now, RenderOptions{})
	for _, want := range []string{
		`# Launch \[beta\]`,
		"**2d**",
		"- ID: ev-1",
		"- Repeat: weekly",
		"- Color: #34C759 (green)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "![") {
		t.Fatalf("expected no image without ImageFile, got:\n%s", md)
	}
}

func TestWriteAll_WritesIndexPagesAndImages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png: %v", err)
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []model.CountdownEvent{
		{ID: "ev-a", Title: "A | B", TargetDate: now.Add(time.Hour), ColorHex: "#FF0000"},
		{ID: "ev-b", Title: "Photo", TargetDate: now.Add(2 * time.Hour), ColorHex: "#00FF00", ImageData: buf.Bytes()},
	}

	dir := t.TempDir()
	res, err := WriteAll(events, dir, now, WriteOptions{IncludeImages: true})
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("expected index + 2 pages + 1 image, got %v", res.Written)
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), `[A \| B](events/ev-a.md)`) {
		t.Fatalf("expected escaped link in index, got:\n%s", index)
	}

	page, err := os.ReadFile(filepath.Join(dir, "events", "ev-b.md"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(page), "![Photo](ev-b.png)") {
		t.Fatalf("expected image link, got:\n%s", page)
	}
	if _, err := os.Stat(filepath.Join(dir, "events", "ev-b.png")); err != nil {
		t.Fatalf("expected image file: %v", err)
	}

	if _, err := WriteAll(events, dir, now, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected overwrite error, got %v", err)
	}
	if _, err := WriteAll(events, dir, now, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestWriteAll_RejectsIDsOutsideEventsDir(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	root := t.TempDir()
	site := filepath.Join(root, "site")

	for _, id := range []string{"../../escaped", "a/b", `..\x`} {
		events := []model.CountdownEvent{
			{ID: "ok", Title: "Fine", TargetDate: now.Add(time.Hour), ColorHex: "#FF0000"},
			{ID: id, Title: "Sneaky", TargetDate: now.Add(time.Hour), ColorHex: "#FF0000"},
		}
		_, err := WriteAll(events, site, now, WriteOptions{Overwrite: true})
		if err == nil || !strings.Contains(err.Error(), "file name") {
			t.Fatalf("id %q: expected file name error, got %v", id, err)
		}
	}

	if _, err := os.Stat(filepath.Join(root, "escaped.md")); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written outside the site dir, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(site, "index.md")); !os.IsNotExist(err) {
		t.Fatalf("expected no index for a rejected run, stat err=%v", err)
	}
}

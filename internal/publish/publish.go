package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"countdown-cli/internal/imaging"
	"countdown-cli/internal/model"
)

type WriteOptions struct {
	Overwrite     bool
	IncludeImages bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteAll writes <toDir>/index.md plus one page per event under <toDir>/events.
// Event images are copied next to their page when IncludeImages is set.
func WriteAll(events []model.CountdownEvent, toDir string, now time.Time, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	// Ids name files under events/; refuse the whole run before writing anything.
	for _, e := range events {
		if !model.ValidID(e.ID) {
			return WriteResult{}, fmt.Errorf("event %q: id cannot be used as a file name", e.ID)
		}
	}

	eventsDir := filepath.Join(toDir, "events")
	if err := os.MkdirAll(eventsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(events, now)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Stop on first error.
	written := []string{indexPath}
	for _, e := range events {
		ropt := RenderOptions{}
		if opt.IncludeImages && e.HasImage() {
			if ext, ok := imaging.Extension(e.ImageData); ok {
				name := e.ID + ext
				p := filepath.Join(eventsDir, name)
				if err := writeFile(p, e.ImageData, opt.Overwrite); err != nil {
					return WriteResult{}, err
				}
				written = append(written, p)
				ropt.ImageFile = name
			}
		}

		p := filepath.Join(eventsDir, e.ID+".md")
		if err := writeFile(p, []byte(RenderEventMarkdown(e, now, ropt)), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}

	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

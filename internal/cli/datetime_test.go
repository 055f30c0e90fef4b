package cli

import (
	"testing"
	"time"
)

func TestParseTarget(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", 2*60*60)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-12-25", time.Date(2026, 12, 25, 0, 0, 0, 0, loc)},
		{"2026-12-25 18:30", time.Date(2026, 12, 25, 18, 30, 0, 0, loc)},
		{"2026-12-25T18:30:15", time.Date(2026, 12, 25, 18, 30, 15, 0, loc)},
		{"2026-12-25T18:30:00Z", time.Date(2026, 12, 25, 18, 30, 0, 0, time.UTC)},
		{"  2026-12-25  ", time.Date(2026, 12, 25, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, err := parseTarget(tt.in, loc)
		if err != nil {
			t.Fatalf("parseTarget(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("parseTarget(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "tomorrow", "2026-13-01", "25/12/2026"} {
		if _, err := parseTarget(bad, loc); err == nil {
			t.Fatalf("parseTarget(%q): expected error", bad)
		}
	}
}

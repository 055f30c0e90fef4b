package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectEventLookupArgs(t *testing.T) {
	t.Parallel()

	const id = "0b6f3c1e-8d2a-4b7e-9a55-2f1c7d9e4a10"

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"countdown"},
			want: []string{"countdown"},
		},
		{
			name: "direct event id first token",
			in:   []string{"countdown", id},
			want: []string{"countdown", "events", "show", id},
		},
		{
			name: "direct event id after value flag",
			in:   []string{"countdown", "--dir", "./tmp-data", id},
			want: []string{"countdown", "--dir", "./tmp-data", "events", "show", id},
		},
		{
			name: "direct event id after equals flag",
			in:   []string{"countdown", "--format=yaml", id},
			want: []string{"countdown", "--format=yaml", "events", "show", id},
		},
		{
			name: "direct event id after bool flag",
			in:   []string{"countdown", "--pretty", id},
			want: []string{"countdown", "--pretty", "events", "show", id},
		},
		{
			name: "direct event id after double dash",
			in:   []string{"countdown", "--dir", "./tmp-data", "--", id},
			want: []string{"countdown", "--dir", "./tmp-data", "events", "show", "--", id},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"countdown", "events", "show", id},
			want: []string{"countdown", "events", "show", id},
		},
		{
			name: "non-uuid token not rewritten",
			in:   []string{"countdown", "sample-vacation"},
			want: []string{"countdown", "sample-vacation"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectEventLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectEventLookupArgs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample{ID: "a", Title: "Launch", Count: 2}, "json", false))
	assert.Equal(t, `{"id":"a","title":"Launch","count":2}`+"\n", buf.String())
}

func TestWrite_EDNUsesJSONKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample{ID: "a", Title: "Launch", Count: 2}, "edn", false))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"title"`)
	assert.Contains(t, out, `"Launch"`)
}

func TestWrite_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]any{"data": []sample{{ID: "a", Title: "Launch", Count: 2}}}, "yaml", false))
	out := buf.String()
	assert.Contains(t, out, "data:")
	assert.Contains(t, out, "title: Launch")
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write(&bytes.Buffer{}, 1, "xml", false)
	assert.ErrorContains(t, err, "unknown format")
}

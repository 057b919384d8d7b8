package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("🔍", "Loading catalog...")

	// Then: output contains icon and message
	assert.Equal(t, "🔍 Loading catalog...\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf).Status("", "detail")

	assert.Equal(t, "   detail\n", buf.String())
}

func TestWriter_Successf(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf).Successf("Wrote %d indicators", 3)

	assert.Contains(t, buf.String(), "✅")
	assert.Contains(t, buf.String(), "Wrote 3 indicators")
}

func TestWriter_WarningAndError(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warningf("catalog %s is empty", "x.json")
	w.Errorf("search unavailable: %s", "missing")

	out := buf.String()
	assert.Contains(t, out, "⚠️")
	assert.Contains(t, out, "catalog x.json is empty")
	assert.Contains(t, out, "❌")
	assert.Contains(t, out, "search unavailable: missing")
}

func TestWriter_Code_IndentsLines(t *testing.T) {
	buf := &bytes.Buffer{}

	New(buf).Code("catalog:\n  source: indicators.json\n")

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "", lines[0])
	assert.Equal(t, "  catalog:", lines[1])
	assert.Equal(t, "    source: indicators.json", lines[2])
}

func TestWriter_JSON_DoesNotEscapeHTML(t *testing.T) {
	buf := &bytes.Buffer{}

	require.NoError(t, New(buf).JSON(map[string]string{"markup": "<b>x</b>"}))

	assert.Equal(t, "{\n  \"markup\": \"<b>x</b>\"\n}\n", buf.String())
}

func TestWriter_Raw(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	require.NoError(t, w.Raw("<div></div>"))
	w.Newline()

	assert.Equal(t, "<div></div>\n", buf.String())
}

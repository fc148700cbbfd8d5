package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxLen   int
		expected string
	}{
		{name: "shorter than max", s: "hello", maxLen: 10, expected: "hello"},
		{name: "equal to max", s: "hello", maxLen: 5, expected: "hello"},
		{name: "longer than max", s: "hello world", maxLen: 8, expected: "hello..."},
		{name: "maxLen less than 3", s: "hello", maxLen: 2, expected: "he"},
		{name: "maxLen exactly 3", s: "hello", maxLen: 3, expected: "..."},
		{name: "empty string", s: "", maxLen: 5, expected: ""},
		{name: "maxLen zero", s: "hello", maxLen: 0, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateString(tt.s, tt.maxLen))
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	cols := []Column{{Name: "Backend", Key: "Name"}, {Name: "Usable", Key: "Usable", Width: 4}}
	RenderTable(&buf, cols, []map[string]string{
		{"Name": "secret-service", "Usable": "yes"},
		{"Name": "kwallet", "Usable": "no (locked)"},
	})

	lines := strings.Split(strings.TrimRight(ansi.Strip(buf.String()), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Backend "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "secret-service "), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "kwallet "), lines[2])
	assert.Contains(t, lines[2], "n...")

	// Columns line up under their headers
	assert.Equal(t, strings.Index(lines[0], "Usable"), strings.Index(lines[1], "yes"))
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []Column{{Name: "Backend", Key: "Name"}}, nil)
	assert.Empty(t, buf.String())
}

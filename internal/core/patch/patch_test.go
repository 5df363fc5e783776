package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplace(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		original    string
		replacement string
		want        string
		wantOK      bool
	}{
		{
			name:        "first occurrence only",
			content:     "aaa bbb aaa",
			original:    "aaa",
			replacement: "ccc",
			want:        "ccc bbb aaa",
			wantOK:      true,
		},
		{
			name:        "multiline anchor",
			content:     "Hello world.\nGoodbye.",
			original:    "Hello world.",
			replacement: "Hi there.",
			want:        "Hi there.\nGoodbye.",
			wantOK:      true,
		},
		{
			name:        "crlf content normalized",
			content:     "Hello world.\r\nGoodbye.",
			original:    "Hello world.\nGoodbye.",
			replacement: "Done.",
			want:        "Done.",
			wantOK:      true,
		},
		{
			name:        "whitespace stripped fallback",
			content:     "Hello world.\nGoodbye.",
			original:    "  Hello world.  \n",
			replacement: "  Hi there.  ",
			want:        "Hi there.\nGoodbye.",
			wantOK:      true,
		},
		{
			name:        "not found returns content unchanged",
			content:     "Hello world.",
			original:    "Missing text",
			replacement: "anything",
			want:        "Hello world.",
			wantOK:      false,
		},
		{
			name:        "empty original always fails",
			content:     "Hello world.",
			original:    "",
			replacement: "anything",
			want:        "Hello world.",
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Replace(tt.content, tt.original, tt.replacement)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplace_RoundTrip(t *testing.T) {
	content := "The quick brown fox.\nJumps over the dog."

	forward, ok := Replace(content, "quick brown fox", "lazy grey wolf")
	require.True(t, ok)

	back, ok := Replace(forward, "lazy grey wolf", "quick brown fox")
	require.True(t, ok)
	assert.Equal(t, content, back)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Hello world.\nGoodbye.", "world.\nGoodbye"))
	assert.True(t, Contains("Hello\r\nworld", "Hello\nworld"))
	assert.False(t, Contains("Hello world.", "missing"))
	assert.False(t, Contains("Hello world.", ""))
}

func TestApplyToFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "working.md")
		require.NoError(t, os.WriteFile(path, []byte("Hello world.\nGoodbye."), 0o644))

		require.NoError(t, ApplyToFile(path, "Hello world.", "Hi there."))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Hi there.\nGoodbye.", string(data))
	})

	t.Run("anchor not found leaves file untouched", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "working.md")
		require.NoError(t, os.WriteFile(path, []byte("Hello world."), 0o644))

		err := ApplyToFile(path, "missing", "anything")
		require.ErrorIs(t, err, ErrAnchorNotFound)

		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "Hello world.", string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		err := ApplyToFile(filepath.Join(t.TempDir(), "nope.md"), "a", "b")
		assert.Error(t, err)
	})
}

package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
)

func nopLogger() logger.Logger { return logger.NewFromZap(zap.NewNop()) }

func TestRenderBuiltins(t *testing.T) {
	r := New("", nopLogger())
	data := Data{Transcript: "[[00:00:00]]\nWitam.", Date: "2025-03-01", Highlights: "- A"}

	tests := []struct {
		kind     Kind
		contains []string
	}{
		{KindHighlights, []string{"### Highlights", "TRANSKRYPT SPOTKANIA:\n\n[[00:00:00]]\nWitam."}},
		{KindSummary, []string{"# 2025-03-01 Spotkanie SKNWPL", "NOTATKI/AGENDA:\n\nBRAK", "[Link zostanie dodany później]"}},
		{KindAgenda, []string{"### Agenda Spotkania"}},
		{KindMetadata, []string{"Data: 2025-03-01", "Temat główny: różne tematy", "Highlights:\n- A"}},
		{KindCleanup, []string{"TRANSKRYPT DO PRZETWORZENIA:\n\n[[00:00:00]]"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := r.Render(tt.kind, data)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.False(t, strings.HasSuffix(got, "\n"))
		})
	}
}

func TestRenderOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "highlights.txt"), []byte("Custom: {{.Transcript}}\n"), 0644))

	r := New(dir, nopLogger())
	got, err := r.Render(KindHighlights, Data{Transcript: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "Custom: abc", got)

	// Kinds without an override still use the built-in template.
	got, err = r.Render(KindAgenda, Data{Notes: "n"})
	require.NoError(t, err)
	assert.Contains(t, got, "### Agenda Spotkania")
}

func TestRenderErrors(t *testing.T) {
	_, err := New("", nopLogger()).Render(Kind("poem"), Data{})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cleanup.txt"), []byte("{{.Transcript"), 0644))
	_, err = New(dir, nopLogger()).Render(KindCleanup, Data{})
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Summary ")
	require.NoError(t, err)
	assert.Equal(t, KindSummary, k)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prompt_01_highlights.txt")
	require.NoError(t, New("", nopLogger()).Save("tekst", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tekst", string(data))
}

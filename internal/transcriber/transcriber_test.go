package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

type fakeEngine struct {
	name   string
	result models.TranscriptionResult
	err    error
	calls  int
	last   EngineRequest
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Transcribe(_ context.Context, req EngineRequest, _ progress.Sink) (models.TranscriptionResult, error) {
	f.calls++
	f.last = req
	r := f.result
	r.AudioFile = req.AudioPath
	return r, f.err
}

func nopLogger() logger.Logger { return logger.NewFromZap(zap.NewNop()) }

func writeAudio(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "meeting_audio.mp3")
	require.NoError(t, os.WriteFile(p, []byte("audio"), 0644))
	return p
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{59.999, "00:00:59"},
		{61.5, "00:01:01"},
		{3723, "01:02:03"},
		{90000, "25:00:00"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.in))
		})
	}
}

func TestTimestampedRoundTrip(t *testing.T) {
	segments := []models.Segment{
		{Start: 0.4, End: 3, Text: "Dzień dobry wszystkim."},
		{Start: 65.2, End: 70, Text: "Przechodzimy do agendy."},
		{Start: 3725.9, End: 3730, Text: "Dziękuję."},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTimestamped(&buf, segments))
	assert.True(t, strings.HasPrefix(buf.String(), "[[00:00:00]]\nDzień dobry wszystkim.\n\n[[00:01:05]]\n"))

	lines, err := ParseTimestamped(&buf)
	require.NoError(t, err)
	require.Len(t, lines, len(segments))
	for i, s := range segments {
		assert.Equal(t, FormatTimestamp(s.Start), lines[i].Start)
		assert.Equal(t, s.Text, lines[i].Text)
	}
}

func TestTimestampedAwkwardText(t *testing.T) {
	tests := []struct {
		name     string
		segments []models.Segment
		expected []TimestampedLine
	}{
		{
			name:     "blank line inside text",
			segments: []models.Segment{{Start: 1, Text: "first part\n\nsecond part"}},
			expected: []TimestampedLine{{Start: "00:00:01", Text: "first part second part"}},
		},
		{
			name: "text that looks like a header",
			segments: []models.Segment{
				{Start: 1, Text: "[[00:00:09]]"},
				{Start: 2, Text: "after"},
			},
			expected: []TimestampedLine{
				{Start: "00:00:01", Text: "[[00:00:09]]"},
				{Start: "00:00:02", Text: "after"},
			},
		},
		{
			name: "empty text is skipped",
			segments: []models.Segment{
				{Start: 1, Text: " \n "},
				{Start: 2, Text: "kept"},
			},
			expected: []TimestampedLine{{Start: "00:00:02", Text: "kept"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTimestamped(&buf, tt.segments))
			lines, err := ParseTimestamped(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lines)
		})
	}
}

func TestParseTimestampedRejectsOrphanText(t *testing.T) {
	_, err := ParseTimestamped(bytes.NewBufferString("hello\n[[00:00:01]]\nworld\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}

func TestNormalize(t *testing.T) {
	in := models.TranscriptionResult{
		Segments: []models.Segment{
			{Start: 10, End: 12, Text: "  second "},
			{Start: 2, End: 1, Text: "first"},
			{Start: 5, End: 6, Text: "   "},
			{Start: 10, End: 11, Text: "third"},
		},
	}

	got := Normalize(in, "pl")
	require.Len(t, got.Segments, 3)
	assert.Equal(t, "first", got.Segments[0].Text)
	assert.Equal(t, 2.0, got.Segments[0].End, "end clamped to start")
	assert.Equal(t, "second", got.Segments[1].Text)
	assert.Equal(t, "third", got.Segments[2].Text, "stable for equal starts")
	for i := 1; i < len(got.Segments); i++ {
		assert.LessOrEqual(t, got.Segments[i-1].Start, got.Segments[i].Start)
	}
	assert.Equal(t, "pl", got.Language)
	assert.Equal(t, 12.0, got.Duration)
	assert.Equal(t, "first second third", got.FullText)
}

func TestTranscribeWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	audio := writeAudio(t, dir)
	outDir := filepath.Join(dir, "results", "meeting_1_2025-03-01")

	engine := &fakeEngine{name: MethodLocal, result: models.TranscriptionResult{
		Duration: 20,
		Engine:   MethodLocal,
		Segments: []models.Segment{
			{Start: 5, End: 9, Text: "drugi"},
			{Start: 0, End: 4, Text: "pierwszy"},
		},
	}}
	tr := New(config.Default().Transcription, nopLogger(), engine)

	out, err := tr.Transcribe(context.Background(), Request{AudioPath: audio, OutputDir: outDir}, nil)
	require.NoError(t, err)

	assert.Equal(t, "pl", engine.last.Language, "configured language is the default")
	assert.Equal(t, filepath.Join(outDir, "meeting_audio_transcript.json"), out.JSONPath)
	assert.Equal(t, filepath.Join(outDir, "meeting_audio_transcript.txt"), out.TextPath)
	assert.Equal(t, filepath.Join(outDir, "meeting_audio_plain.txt"), out.PlainPath)

	text, err := os.ReadFile(out.TextPath)
	require.NoError(t, err)
	assert.Equal(t, "[[00:00:00]]\npierwszy\n\n[[00:00:05]]\ndrugi\n\n", string(text))

	plain, err := os.ReadFile(out.PlainPath)
	require.NoError(t, err)
	assert.Equal(t, "pierwszy drugi", string(plain))

	raw, err := os.ReadFile(out.JSONPath)
	require.NoError(t, err)
	var doc transcriptDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "00:00:20", doc.DurationFormatted)
	assert.Equal(t, "00:00:05", doc.Segments[1].StartFormatted)

	// Re-running into the same directory is fine.
	_, err = tr.Transcribe(context.Background(), Request{AudioPath: audio, OutputDir: outDir}, nil)
	require.NoError(t, err)
}

func TestTranscribeErrors(t *testing.T) {
	dir := t.TempDir()
	audio := writeAudio(t, dir)

	t.Run("missing audio never reaches the engine", func(t *testing.T) {
		engine := &fakeEngine{name: MethodLocal}
		tr := New(config.Default().Transcription, nopLogger(), engine)
		_, err := tr.Transcribe(context.Background(), Request{AudioPath: filepath.Join(dir, "nope.mp3")}, nil)
		assert.True(t, errors.Is(err, errors.ErrInputNotFound))
		assert.Zero(t, engine.calls)
	})

	t.Run("unknown method", func(t *testing.T) {
		tr := New(config.Default().Transcription, nopLogger(), &fakeEngine{name: MethodLocal})
		_, err := tr.Transcribe(context.Background(), Request{AudioPath: audio, Engine: EngineConfig{Method: "cloud"}}, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("openai is an alias for remote", func(t *testing.T) {
		remote := &fakeEngine{name: MethodRemote, err: errors.Mark(errors.New("no key"), errors.ErrMissingCredential)}
		tr := New(config.Default().Transcription, nopLogger(), &fakeEngine{name: MethodLocal}, remote)
		_, err := tr.Transcribe(context.Background(), Request{AudioPath: audio, Engine: EngineConfig{Method: "openai"}}, nil)
		assert.True(t, errors.Is(err, errors.ErrMissingCredential))
		assert.Equal(t, 1, remote.calls)
	})
}

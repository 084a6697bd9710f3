package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/ledger"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/media"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
	"github.com/nguyentantai21042004/meeting-flow/internal/prompts"
	"github.com/nguyentantai21042004/meeting-flow/internal/publisher"
	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
)

type fakeTranscriber struct {
	err  error
	last transcriber.Request
}

func (f *fakeTranscriber) Transcribe(_ context.Context, req transcriber.Request, _ progress.Sink) (transcriber.Output, error) {
	f.last = req
	if f.err != nil {
		return transcriber.Output{}, f.err
	}
	result := transcriber.Normalize(models.TranscriptionResult{
		AudioFile: req.AudioPath,
		Engine:    "fake",
		Segments:  []models.Segment{{Start: 0, End: 1, Text: "Witam."}},
	}, "pl")
	return transcriber.WriteArtifacts(result, req.OutputDir)
}

type fakeEncoder struct {
	err       error
	extracted []string
	last      media.EncodeRequest
}

func (f *fakeEncoder) Encode(_ context.Context, req media.EncodeRequest, _ progress.Sink) (models.VideoArtifact, error) {
	f.last = req
	if f.err != nil {
		return models.VideoArtifact{}, f.err
	}
	if err := os.WriteFile(req.OutputPath, []byte("mp4"), 0644); err != nil {
		return models.VideoArtifact{}, err
	}
	return models.VideoArtifact{Path: req.OutputPath, Resolution: "1920x1080", FPS: 30}, nil
}

func (f *fakeEncoder) ExtractAudio(_ context.Context, videoPath, outputPath, format string) (string, error) {
	f.extracted = append(f.extracted, videoPath)
	return outputPath, os.WriteFile(outputPath, []byte("mp3"), 0644)
}

type fakePublisher struct {
	err       error
	last      publisher.PublishRequest
	n         int
	onPublish func()
}

func (f *fakePublisher) Publish(_ context.Context, req publisher.PublishRequest, _ progress.Sink) (models.PublishedLink, error) {
	f.last = req
	f.n++
	if f.onPublish != nil {
		f.onPublish()
	}
	if f.err != nil {
		return models.PublishedLink{}, f.err
	}
	id := "vid" + string(rune('0'+f.n))
	return models.PublishedLink{ID: id, URL: "https://www.youtube.com/watch?v=" + id, Visibility: req.Visibility, Title: req.Title}, nil
}

func (f *fakePublisher) Bootstrap(context.Context) error { return nil }

type fixture struct {
	cfg   *config.Config
	tr    *fakeTranscriber
	enc   *fakeEncoder
	pub   *fakePublisher
	led   ledger.Ledger
	orch  Orchestrator
	audio string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.Results = filepath.Join(dir, "results")
	cfg.Paths.Ledger = filepath.Join(dir, "youtube_links.txt")
	cfg.Paths.Background = filepath.Join(dir, "bg.png")

	audio := filepath.Join(dir, "spotkanie.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("audio"), 0644))

	log := logger.NewFromZap(zap.NewNop())
	f := &fixture{
		cfg:   cfg,
		tr:    &fakeTranscriber{},
		enc:   &fakeEncoder{},
		pub:   &fakePublisher{},
		led:   ledger.New(cfg.Paths.Ledger, log),
		audio: audio,
	}
	f.orch = New(cfg, Deps{
		Transcriber: f.tr,
		Encoder:     f.enc,
		Publisher:   f.pub,
		Ledger:      f.led,
		Prompts:     prompts.New("", log),
		Clock:       func() time.Time { return time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC) },
	}, log)
	return f
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sum, err := f.orch.Run(ctx, Request{SourcePath: f.audio}, nil)
	require.NoError(t, err)

	wantDir := filepath.Join(f.cfg.Paths.Results, "meeting_1_2025-03-01")
	assert.Equal(t, 1, sum.Number)
	assert.Equal(t, wantDir, sum.OutputDir)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1", sum.URL)
	assert.Equal(t, filepath.Join(wantDir, "spotkanie.mp4"), sum.VideoPath)
	assert.Equal(t, filepath.Join(wantDir, "spotkanie_transcript.txt"), sum.TranscriptPath)

	assert.Equal(t, "Spotkanie SKNWPL #1 - 2025-03-01", f.pub.last.Title)
	assert.Equal(t, models.VisibilityUnlisted, f.pub.last.Visibility)
	assert.Contains(t, f.pub.last.Description, "z dnia 2025-03-01.")
	assert.Equal(t, f.cfg.Paths.Background, f.enc.last.BackgroundPath)

	link, err := os.ReadFile(filepath.Join(wantDir, LinkFile))
	require.NoError(t, err)
	assert.Equal(t, sum.URL+"\n", string(link))

	for _, name := range []string{"prompt_01_highlights.txt", "prompt_02_summary.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(wantDir, name))
	}

	entries, err := f.led.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.Entry{Number: 1, URL: sum.URL, Line: 1}, entries[0])

	// A second run takes the next number.
	sum2, err := f.orch.Run(ctx, Request{SourcePath: f.audio}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, sum2.Number)
}

func TestRunOverridesAndHighlights(t *testing.T) {
	f := newFixture(t)
	dir := OutputDir(f.cfg.Paths.Results, 12, "2025-01-15")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "highlights.md"), []byte("- ważna decyzja"), 0644))

	sum, err := f.orch.Run(context.Background(), Request{
		SourcePath: f.audio,
		Number:     12,
		Date:       "2025-01-15",
		Background: "custom.png",
		Visibility: models.VisibilityPrivate,
		Language:   "en",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 12, sum.Number)
	assert.Equal(t, dir, sum.OutputDir, "existing directory is reused")
	assert.Equal(t, "custom.png", f.enc.last.BackgroundPath)
	assert.Equal(t, models.VisibilityPrivate, f.pub.last.Visibility)
	assert.Equal(t, "en", f.tr.last.Language)
	assert.Contains(t, f.pub.last.Description, "- ważna decyzja")
}

func TestRunExtractsAudioFromVideo(t *testing.T) {
	f := newFixture(t)
	video := filepath.Join(filepath.Dir(f.audio), "nagranie.mkv")
	require.NoError(t, os.WriteFile(video, []byte("mkv"), 0644))

	sum, err := f.orch.Run(context.Background(), Request{SourcePath: video}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{video}, f.enc.extracted)
	assert.Equal(t, filepath.Join(sum.OutputDir, "nagranie.mp3"), f.tr.last.AudioPath)
	assert.Equal(t, filepath.Join(sum.OutputDir, "nagranie.mp4"), sum.VideoPath)
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture) Request
		wantStage models.State
		wantErr   error
	}{
		{
			name: "missing recording",
			setup: func(f *fixture) Request {
				return Request{SourcePath: f.audio + ".missing"}
			},
			wantStage: models.StateTranscribing,
			wantErr:   errors.ErrInputNotFound,
		},
		{
			name: "bad date",
			setup: func(f *fixture) Request {
				return Request{SourcePath: f.audio, Date: "01.03.2025"}
			},
			wantStage: models.StateInit,
			wantErr:   errors.ErrInvalidArgument,
		},
		{
			name: "malformed ledger",
			setup: func(f *fixture) Request {
				require.NoError(t, os.WriteFile(f.cfg.Paths.Ledger, []byte("garbage\n"), 0644))
				return Request{SourcePath: f.audio}
			},
			wantStage: models.StateInit,
			wantErr:   errors.ErrLedgerParse,
		},
		{
			name: "engine failure",
			setup: func(f *fixture) Request {
				f.tr.err = errors.Mark(errors.New("boom"), errors.ErrEngineFailure)
				return Request{SourcePath: f.audio}
			},
			wantStage: models.StateTranscribing,
			wantErr:   errors.ErrEngineFailure,
		},
		{
			name: "encode failure",
			setup: func(f *fixture) Request {
				f.enc.err = errors.Mark(errors.New("boom"), errors.ErrEncodeFailure)
				return Request{SourcePath: f.audio}
			},
			wantStage: models.StateEncoding,
			wantErr:   errors.ErrEncodeFailure,
		},
		{
			name: "missing credential",
			setup: func(f *fixture) Request {
				f.pub.err = errors.Mark(errors.New("no token"), errors.ErrMissingCredential)
				return Request{SourcePath: f.audio}
			},
			wantStage: models.StatePublishing,
			wantErr:   errors.ErrMissingCredential,
		},
		{
			name: "ledger conflict",
			setup: func(f *fixture) Request {
				require.NoError(t, os.WriteFile(f.cfg.Paths.Ledger, []byte("5 - https://youtu.be/old\n"), 0644))
				return Request{SourcePath: f.audio, Number: 5}
			},
			wantStage: models.StateInit,
			wantErr:   errors.ErrLedgerConflict,
		},
		{
			name: "number taken by an entry below a typo",
			setup: func(f *fixture) Request {
				require.NoError(t, os.WriteFile(f.cfg.Paths.Ledger, []byte("typo\n5 - https://youtu.be/old\n"), 0644))
				return Request{SourcePath: f.audio, Number: 5}
			},
			wantStage: models.StateInit,
			wantErr:   errors.ErrLedgerConflict,
		},
		{
			name: "explicit number with malformed last ledger line",
			setup: func(f *fixture) Request {
				require.NoError(t, os.WriteFile(f.cfg.Paths.Ledger, []byte("1 - https://youtu.be/old\ntypo\n"), 0644))
				return Request{SourcePath: f.audio, Number: 5}
			},
			wantStage: models.StateInit,
			wantErr:   errors.ErrLedgerParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.orch.Run(context.Background(), tt.setup(f), nil)
			require.Error(t, err)

			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantStage, se.Stage)
			assert.Equal(t, tt.wantStage, se.Run.FailedAt)
			assert.Equal(t, models.StateFailed, se.Run.Status)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.wantStage != models.StatePublishing {
				assert.Zero(t, f.pub.n, "nothing uploaded")
			}
		})
	}
}

func TestRunToleratesEarlierLedgerTypo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(f.cfg.Paths.Ledger, []byte("1 - https://youtu.be/a\ntypo line\n2 - https://youtu.be/b\n"), 0644))

	sum, err := f.orch.Run(ctx, Request{SourcePath: f.audio}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Number)
	assert.Equal(t, 1, f.pub.n)
	assert.FileExists(t, filepath.Join(sum.OutputDir, LinkFile))

	data, err := os.ReadFile(f.cfg.Paths.Ledger)
	require.NoError(t, err)
	assert.Contains(t, string(data), "typo line\n2 - https://youtu.be/b\n3 - "+sum.URL+"\n")
}

func TestRunKeepsLinkWhenLedgerAppendFails(t *testing.T) {
	f := newFixture(t)
	// Another writer records the same number while the upload runs.
	f.pub.onPublish = func() {
		require.NoError(t, os.WriteFile(f.cfg.Paths.Ledger, []byte("4 - https://youtu.be/other\n"), 0644))
	}

	_, err := f.orch.Run(context.Background(), Request{SourcePath: f.audio, Number: 4}, nil)
	require.Error(t, err)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, models.StatePersisted, se.Stage)
	assert.True(t, errors.Is(err, errors.ErrLedgerConflict))

	link, err := os.ReadFile(filepath.Join(OutputDir(f.cfg.Paths.Results, 4, "2025-03-01"), LinkFile))
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1\n", string(link))
}

func TestRunOpensRunLogger(t *testing.T) {
	f := newFixture(t)
	var got models.Run
	f.orch = New(f.cfg, Deps{
		Transcriber: f.tr,
		Encoder:     f.enc,
		Publisher:   f.pub,
		Ledger:      f.led,
		Clock:       func() time.Time { return time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC) },
		RunLogger: func(r models.Run) (logger.Logger, error) {
			got = r
			return logger.NewFromZap(zap.NewNop()), nil
		},
	}, logger.NewFromZap(zap.NewNop()))

	sum, err := f.orch.Run(context.Background(), Request{SourcePath: f.audio}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Number)
	assert.Equal(t, "2025-03-01", got.Date)
	assert.Equal(t, sum.OutputDir, got.OutputDir)
	assert.DirExists(t, got.OutputDir)
}

func TestRunKeepsTranscriptWhenEncodingFails(t *testing.T) {
	f := newFixture(t)
	f.enc.err = errors.Mark(errors.New("boom"), errors.ErrEncodeFailure)

	_, err := f.orch.Run(context.Background(), Request{SourcePath: f.audio, Number: 3}, nil)
	require.Error(t, err)

	dir := OutputDir(f.cfg.Paths.Results, 3, "2025-03-01")
	assert.FileExists(t, filepath.Join(dir, "spotkanie_transcript.txt"))
	assert.NoFileExists(t, filepath.Join(dir, LinkFile))

	n, err := f.led.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "nothing appended on failure")
}

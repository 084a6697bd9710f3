package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/media"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
	"github.com/nguyentantai21042004/meeting-flow/internal/publisher"
	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
)

// LinkFile is the marker written next to a published video.
const LinkFile = "youtube_link.txt"

// run carries the state of one invocation between stages.
type run struct {
	models.Run
	req        Request
	log        logger.Logger
	sink       progress.Sink
	transcript transcriber.Output
	video      models.VideoArtifact
	link       models.PublishedLink
	closeLog   func() error
}

// Run executes the stages in order. There is no retry: a failed run is
// re-invoked from the start, and it reuses the same output directory.
func (o *implOrchestrator) Run(ctx context.Context, req Request, sink progress.Sink) (models.Summary, error) {
	r := &run{
		Run: models.Run{
			ID:         uuid.NewString(),
			SourcePath: req.SourcePath,
			Status:     models.StateInit,
			StartedAt:  o.deps.Clock(),
		},
		req:  req,
		sink: progress.OrNop(sink),
	}
	r.log = o.logger.With("run", r.ID)
	defer func() {
		if r.closeLog != nil {
			_ = r.closeLog()
		}
	}()

	stages := []struct {
		state models.State
		fn    func(context.Context, *run) error
	}{
		{models.StateInit, o.initRun},
		{models.StateTranscribing, o.transcribe},
		{models.StateEncoding, o.encode},
		{models.StatePublishing, o.publish},
		{models.StatePersisted, o.persist},
	}

	for _, st := range stages {
		r.Status = st.state
		if st.state != models.StateInit {
			r.log.Info(ctx, "----- %s -----", strings.ToUpper(string(st.state)))
		}
		if err := st.fn(ctx, r); err != nil {
			return models.Summary{}, o.fail(ctx, r, err)
		}
	}

	r.Status = models.StateDone
	summary := models.Summary{
		Number:         r.Number,
		URL:            r.link.URL,
		VideoPath:      r.video.Path,
		TranscriptPath: r.transcript.TextPath,
		OutputDir:      r.OutputDir,
	}
	o.writeReadme(ctx, r)

	r.log.Info(ctx, "========================================")
	r.log.Info(ctx, "Meeting #%d processed successfully!", r.Number)
	r.log.Info(ctx, "Video: %s", summary.URL)
	r.log.Info(ctx, "Output: %s", summary.OutputDir)
	r.log.Info(ctx, "Processing time: %s", time.Since(r.StartedAt).Round(time.Second))
	r.log.Info(ctx, "========================================")
	progress.Info(r.sink, string(models.StateDone), summary.URL)
	return summary, nil
}

func (o *implOrchestrator) fail(ctx context.Context, r *run, err error) error {
	r.FailedAt = r.Status
	stage := r.Status
	r.Status = models.StateFailed
	r.log.Error(ctx, "Run failed in %s: %v", stage, err)
	for _, hint := range errors.GetAllHints(err) {
		r.log.Error(ctx, "Hint: %s", hint)
	}
	return &StageError{Stage: stage, Run: r.Run, Err: err}
}

// initRun resolves the sequence number and date and creates the output dir.
func (o *implOrchestrator) initRun(ctx context.Context, r *run) error {
	switch {
	case r.req.Number > 0:
		e, found, err := o.deps.Ledger.Lookup(ctx, r.req.Number)
		if err != nil {
			return err
		}
		if found {
			return errors.WithDetailf(
				errors.Mark(errors.Newf("meeting %d is already recorded", r.req.Number), errors.ErrLedgerConflict),
				"line %d: %d - %s", e.Line, e.Number, e.URL,
			)
		}
		r.Number = r.req.Number
	case r.req.Number < 0:
		return errors.Mark(errors.Newf("meeting number must be positive, got %d", r.req.Number), errors.ErrInvalidArgument)
	default:
		n, err := o.deps.Ledger.Next(ctx)
		if err != nil {
			return err
		}
		r.Number = n
	}

	r.Date = r.req.Date
	if r.Date == "" {
		r.Date = o.deps.Clock().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return errors.Mark(errors.Newf("date %q is not YYYY-MM-DD", r.Date), errors.ErrInvalidArgument)
	}

	r.OutputDir = OutputDir(o.cfg.Paths.Results, r.Number, r.Date)
	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	if o.deps.RunLogger != nil {
		log, err := o.deps.RunLogger(r.Run)
		if err != nil {
			r.log.Warn(ctx, "Cannot open run log: %v", err)
		} else {
			r.log = log.With("run", r.ID)
			r.closeLog = log.Sync
		}
	}

	r.log.Info(ctx, "========================================")
	r.log.Info(ctx, "Meeting #%d (%s): %s", r.Number, r.Date, r.SourcePath)
	r.log.Info(ctx, "Output: %s", r.OutputDir)
	r.log.Info(ctx, "========================================")
	progress.Info(r.sink, string(models.StateInit), fmt.Sprintf("meeting #%d", r.Number))
	return nil
}

// OutputDir returns <results>/meeting_<n>_<date>.
func OutputDir(results string, number int, date string) string {
	return filepath.Join(results, fmt.Sprintf("meeting_%d_%s", number, date))
}

func (o *implOrchestrator) transcribe(ctx context.Context, r *run) error {
	if info, err := os.Stat(r.SourcePath); err != nil || info.IsDir() {
		return errors.Mark(errors.Newf("recording not found: %s", r.SourcePath), errors.ErrInputNotFound)
	}

	r.AudioPath = r.SourcePath
	if media.IsVideo(r.SourcePath) {
		stem := strings.TrimSuffix(filepath.Base(r.SourcePath), filepath.Ext(r.SourcePath))
		audio, err := o.deps.Encoder.ExtractAudio(ctx, r.SourcePath, filepath.Join(r.OutputDir, stem+".mp3"), "mp3")
		if err != nil {
			return err
		}
		r.AudioPath = audio
	}

	out, err := o.deps.Transcriber.Transcribe(ctx, transcriber.Request{
		AudioPath: r.AudioPath,
		Language:  r.req.Language,
		OutputDir: r.OutputDir,
		Engine:    r.req.Engine,
	}, r.sink)
	if err != nil {
		return err
	}
	r.transcript = out

	o.writePrompts(ctx, r)
	return nil
}

func (o *implOrchestrator) encode(ctx context.Context, r *run) error {
	background := r.req.Background
	if background == "" {
		background = o.cfg.Paths.Background
	}

	stem := strings.TrimSuffix(filepath.Base(r.AudioPath), filepath.Ext(r.AudioPath))
	video, err := o.deps.Encoder.Encode(ctx, media.EncodeRequest{
		AudioPath:      r.AudioPath,
		BackgroundPath: background,
		OutputPath:     filepath.Join(r.OutputDir, stem+".mp4"),
	}, r.sink)
	if err != nil {
		return err
	}
	r.video = video
	return nil
}

func (o *implOrchestrator) publish(ctx context.Context, r *run) error {
	title, err := publisher.Title(o.cfg.Publish.TitleTemplate, publisher.TitleData{Number: r.Number, Date: r.Date})
	if err != nil {
		return err
	}

	highlights := ""
	if data, err := os.ReadFile(filepath.Join(r.OutputDir, "highlights.md")); err == nil {
		highlights = string(data)
	}

	visibility := r.req.Visibility
	if visibility == "" {
		visibility = models.Visibility(o.cfg.Publish.Visibility)
	}

	link, err := o.deps.Publisher.Publish(ctx, publisher.PublishRequest{
		VideoPath: r.video.Path,
		Title:     title,
		Description: publisher.Describe(publisher.DescriptionInput{
			Date:       r.Date,
			Highlights: highlights,
			Footer:     o.cfg.Publish.DescriptionFooter,
		}),
		Visibility: visibility,
	}, r.sink)
	if err != nil {
		return err
	}
	r.link = link
	return nil
}

// persist writes the link marker before the ledger append. The marker stays
// when the append fails.
func (o *implOrchestrator) persist(ctx context.Context, r *run) error {
	if err := WriteLinkFile(filepath.Dir(r.video.Path), r.link.URL); err != nil {
		r.log.Warn(ctx, "Failed to write %s: %v", LinkFile, err)
	}
	return o.deps.Ledger.Append(ctx, r.Number, r.link.URL)
}

// WriteLinkFile writes the published URL into dir/youtube_link.txt.
func WriteLinkFile(dir, url string) error {
	return os.WriteFile(filepath.Join(dir, LinkFile), []byte(url+"\n"), 0644)
}

package transcriber

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

// Transcribe runs the selected engine and writes the three transcript
// artifacts into req.OutputDir.
func (t *implTranscriber) Transcribe(ctx context.Context, req Request, sink progress.Sink) (Output, error) {
	sink = progress.OrNop(sink)

	if req.AudioPath == "" {
		return Output{}, errors.Mark(errors.New("audio file not specified"), errors.ErrInputNotFound)
	}
	if info, err := os.Stat(req.AudioPath); err != nil || info.IsDir() {
		return Output{}, errors.Mark(errors.Newf("audio file not found: %s", req.AudioPath), errors.ErrInputNotFound)
	}

	method := resolveMethod(req.Engine.Method, t.method)
	engine, ok := t.engines[method]
	if !ok {
		return Output{}, errors.Mark(errors.Newf("unknown transcription method %q", method), errors.ErrInvalidArgument)
	}

	language := req.Language
	if language == "" {
		language = t.language
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(req.AudioPath)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return Output{}, errors.Wrap(err, "create output dir")
	}

	start := time.Now()
	t.logger.Info(ctx, "Starting transcription (%s): %s", method, req.AudioPath)
	progress.Started(sink, stage, filepath.Base(req.AudioPath))

	result, err := engine.Transcribe(ctx, EngineRequest{
		AudioPath: req.AudioPath,
		Language:  language,
		Overrides: req.Engine.Overrides,
		APIKey:    req.Engine.APIKey,
	}, sink)
	if err != nil {
		progress.Failed(sink, stage, err)
		return Output{}, err
	}

	result = Normalize(result, language)

	out, err := WriteArtifacts(result, outputDir)
	if err != nil {
		progress.Failed(sink, stage, err)
		return Output{}, err
	}

	progress.Finished(sink, stage, out.TextPath)
	t.logger.Info(ctx, "Transcription completed: %d segments, %s of audio in %s",
		len(result.Segments), FormatTimestamp(result.Duration), time.Since(start).Round(time.Second))
	return out, nil
}

func resolveMethod(requested, fallback string) string {
	m := strings.ToLower(strings.TrimSpace(requested))
	if m == "" {
		m = strings.ToLower(fallback)
	}
	if m == "openai" {
		m = MethodRemote
	}
	if m == "" {
		m = MethodLocal
	}
	return m
}

// Normalize trims segment texts, drops empty segments, enforces end >= start
// and orders segments by start time. Missing language, duration and full text
// are derived.
func Normalize(r models.TranscriptionResult, language string) models.TranscriptionResult {
	segments := make([]models.Segment, 0, len(r.Segments))
	for _, s := range r.Segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End < s.Start {
			s.End = s.Start
		}
		segments = append(segments, s)
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	r.Segments = segments

	if r.Language == "" {
		r.Language = language
	}

	if r.Duration <= 0 {
		for _, s := range segments {
			if s.End > r.Duration {
				r.Duration = s.End
			}
		}
	}

	r.FullText = strings.TrimSpace(r.FullText)
	if r.FullText == "" {
		texts := make([]string, len(segments))
		for i, s := range segments {
			texts[i] = s.Text
		}
		r.FullText = strings.Join(texts, " ")
	}
	return r
}

// WriteArtifacts writes <stem>_transcript.json, <stem>_transcript.txt and
// <stem>_plain.txt into dir, where stem is the audio file's base name.
func WriteArtifacts(r models.TranscriptionResult, dir string) (Output, error) {
	stem := strings.TrimSuffix(filepath.Base(r.AudioFile), filepath.Ext(r.AudioFile))
	out := Output{
		Result:    r,
		JSONPath:  filepath.Join(dir, stem+"_transcript.json"),
		TextPath:  filepath.Join(dir, stem+"_transcript.txt"),
		PlainPath: filepath.Join(dir, stem+"_plain.txt"),
	}

	doc := transcriptDoc{
		AudioFile:         r.AudioFile,
		Language:          r.Language,
		Duration:          r.Duration,
		DurationFormatted: FormatTimestamp(r.Duration),
		Engine:            r.Engine,
		Model:             r.Model,
		Device:            r.Device,
		ComputeType:       r.ComputeType,
		Segments:          make([]segmentDoc, len(r.Segments)),
		FullText:          r.FullText,
	}
	for i, s := range r.Segments {
		doc.Segments[i] = segmentDoc{
			Start:          s.Start,
			End:            s.End,
			Text:           s.Text,
			StartFormatted: FormatTimestamp(s.Start),
			EndFormatted:   FormatTimestamp(s.End),
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Output{}, errors.Wrap(err, "marshal transcript")
	}
	if err := os.WriteFile(out.JSONPath, data, 0644); err != nil {
		return Output{}, errors.Wrap(err, "write transcript JSON")
	}

	f, err := os.Create(out.TextPath)
	if err != nil {
		return Output{}, errors.Wrap(err, "create timestamped transcript")
	}
	if err := WriteTimestamped(f, r.Segments); err != nil {
		f.Close()
		return Output{}, errors.Wrap(err, "write timestamped transcript")
	}
	if err := f.Close(); err != nil {
		return Output{}, errors.Wrap(err, "close timestamped transcript")
	}

	if err := os.WriteFile(out.PlainPath, []byte(r.FullText), 0644); err != nil {
		return Output{}, errors.Wrap(err, "write plain transcript")
	}
	return out, nil
}

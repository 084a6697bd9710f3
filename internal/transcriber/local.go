package transcriber

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
	"github.com/nguyentantai21042004/meeting-flow/pkg/executor"
)

// segmentLineRe matches the "[00:01.000 --> 00:05.000] text" lines the engine
// prints while it works.
var segmentLineRe = regexp.MustCompile(`^\[((?:\d+:)?\d+:\d+(?:\.\d+)?)\s+-->\s+((?:\d+:)?\d+:\d+(?:\.\d+)?)\]`)

// whisperOutput mirrors the engine's JSON output file.
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (e *localEngine) Name() string { return MethodLocal }

// Transcribe runs whisper-ctranslate2 with the advisor's profile.
func (e *localEngine) Transcribe(ctx context.Context, req EngineRequest, sink progress.Sink) (models.TranscriptionResult, error) {
	if _, err := e.executor.LookPath(e.cfg.BinaryPath); err != nil {
		return models.TranscriptionResult{}, errors.WithHint(
			errors.Mark(errors.Wrapf(err, "%s not found", e.cfg.BinaryPath), errors.ErrEngineUnavailable),
			"install it with `pip install whisper-ctranslate2` or use --method remote",
		)
	}

	ov := req.Overrides
	if ov.ModelSize == "" {
		ov.ModelSize = e.cfg.Model
	}
	if ov.Device == "" {
		ov.Device = e.cfg.Device
	}
	if ov.BeamSize == 0 {
		ov.BeamSize = e.cfg.BeamSize
	}
	profile, _ := e.advisor.Recommend(ctx, ov)

	duration, err := e.prober.Duration(ctx, req.AudioPath)
	if err != nil {
		e.logger.Warn(ctx, "Cannot probe audio duration: %v", err)
		duration = 0
	}

	tmpDir, err := os.MkdirTemp("", "meeting-transcribe-*")
	if err != nil {
		return models.TranscriptionResult{}, errors.Wrap(err, "create temp dir")
	}
	defer os.RemoveAll(tmpDir)

	// --vad_filter: skip silence, long pauses are common in meetings
	// --batched: only worth it with enough memory, batch 1 disables it
	args := []string{
		req.AudioPath,
		"--model", profile.ModelSize,
		"--device", profile.Device,
		"--compute_type", profile.ComputeType,
		"--beam_size", strconv.Itoa(profile.BeamSize),
		"--vad_filter", "True",
		"--vad_min_silence_duration_ms", strconv.Itoa(e.cfg.VADMinSilentMS),
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", tmpDir,
	}
	if req.Language != "" && req.Language != "auto" {
		args = append(args, "--language", req.Language)
	}
	if profile.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(profile.Threads))
	}
	if profile.BatchSize > 1 {
		args = append(args, "--batched", "True", "--batch_size", strconv.Itoa(profile.BatchSize))
	}

	e.logger.Info(ctx, "Transcribing locally: %s (model=%s device=%s)", req.AudioPath, profile.ModelSize, profile.Device)

	onLine := func(line string) {
		m := segmentLineRe.FindStringSubmatch(line)
		if m == nil {
			return
		}
		end := parseClock(m[2])
		if duration > 0 {
			progress.Advance(sink, stage, end/duration, FormatTimestamp(end))
		}
	}

	if err := e.executor.Stream(ctx, e.cfg.BinaryPath, args, onLine); err != nil {
		code, _ := executor.ExitCode(err)
		return models.TranscriptionResult{}, errors.WithDetailf(
			errors.Mark(errors.Wrap(err, "whisper transcribe"), errors.ErrEngineFailure),
			"exit code %d", code,
		)
	}

	stem := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
	data, err := os.ReadFile(filepath.Join(tmpDir, stem+".json"))
	if err != nil {
		return models.TranscriptionResult{}, errors.Mark(errors.Wrap(err, "engine produced no output"), errors.ErrEngineFailure)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return models.TranscriptionResult{}, errors.Mark(errors.Wrap(err, "parse engine output"), errors.ErrEngineFailure)
	}

	segments := make([]models.Segment, 0, len(out.Segments))
	texts := make([]string, 0, len(out.Segments))
	for _, s := range out.Segments {
		text := strings.TrimSpace(s.Text)
		segments = append(segments, models.Segment{Start: s.Start, End: s.End, Text: text})
		if text != "" {
			texts = append(texts, text)
		}
	}

	language := req.Language
	if out.Language != "" {
		language = out.Language
	}

	return models.TranscriptionResult{
		AudioFile:   req.AudioPath,
		Language:    language,
		Duration:    duration,
		Engine:      MethodLocal,
		Model:       profile.ModelSize,
		Device:      profile.Device,
		ComputeType: profile.ComputeType,
		Segments:    segments,
		FullText:    strings.Join(texts, " "),
	}, nil
}

// parseClock converts "[HH:]MM:SS[.fff]" to seconds.
func parseClock(s string) float64 {
	var total float64
	for _, part := range strings.Split(s, ":") {
		v, _ := strconv.ParseFloat(part, 64)
		total = total*60 + v
	}
	return total
}

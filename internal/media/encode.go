package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
	"github.com/nguyentantai21042004/meeting-flow/pkg/executor"
)

const stageEncoding = string(models.StateEncoding)

// EncodeRequest describes one encode. Zero-valued encoding parameters fall
// back to the encoder configuration.
type EncodeRequest struct {
	AudioPath      string
	BackgroundPath string
	OutputPath     string
	Resolution     string
	FPS            int
	AudioBitrate   string
	VideoBitrate   string
}

var timeRe = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// Encode renders the audio over the background image.
func (e *implEncoder) Encode(ctx context.Context, req EncodeRequest, sink progress.Sink) (models.VideoArtifact, error) {
	sink = progress.OrNop(sink)

	// Inputs first: a bad path must never start ffmpeg.
	if err := requireFile(req.AudioPath, "audio file"); err != nil {
		return models.VideoArtifact{}, err
	}
	if err := requireFile(req.BackgroundPath, "background image"); err != nil {
		return models.VideoArtifact{}, err
	}

	req = e.withDefaults(req)
	width, height, err := config.ParseResolution(req.Resolution)
	if err != nil {
		return models.VideoArtifact{}, err
	}

	if _, err := e.executor.LookPath(e.cfg.BinaryPath); err != nil {
		return models.VideoArtifact{}, errors.WithHint(
			errors.Mark(errors.Wrapf(err, "%s not found", e.cfg.BinaryPath), errors.ErrToolNotFound),
			"install ffmpeg and make sure it is on PATH",
		)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return models.VideoArtifact{}, errors.Wrap(err, "create output dir")
	}

	source, err := e.prober.Duration(ctx, req.AudioPath)
	if err != nil {
		e.logger.Warn(ctx, "Cannot probe source duration, progress will be indeterminate: %v", err)
		source = 0
	}

	e.logger.Info(ctx, "Encoding video: %s + %s -> %s", req.AudioPath, req.BackgroundPath, req.OutputPath)
	progress.Started(sink, stageEncoding, filepath.Base(req.OutputPath))

	// -loop 1: repeat the still image for the whole track
	// -tune stillimage: x264 tuning for static content
	// -shortest: stop when the audio ends
	// -movflags +faststart: moov atom up front for streaming
	scale := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height)
	args := []string{
		"-y",
		"-loop", "1",
		"-i", req.BackgroundPath,
		"-i", req.AudioPath,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-c:a", "aac",
		"-b:a", req.AudioBitrate,
		"-b:v", req.VideoBitrate,
		"-r", strconv.Itoa(req.FPS),
		"-vf", scale,
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-movflags", "+faststart",
		req.OutputPath,
	}

	onLine := func(line string) {
		if source <= 0 {
			return
		}
		if t, ok := parseProgressTime(line); ok {
			progress.Advance(sink, stageEncoding, t/source, formatClock(t))
		}
	}

	if err := e.executor.Stream(ctx, e.cfg.BinaryPath, args, onLine); err != nil {
		os.Remove(req.OutputPath)
		code, _ := executor.ExitCode(err)
		err = errors.WithDetailf(
			errors.Mark(errors.Wrap(err, "ffmpeg encode"), errors.ErrEncodeFailure),
			"exit code %d", code,
		)
		progress.Failed(sink, stageEncoding, err)
		return models.VideoArtifact{}, err
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil {
		err = errors.Mark(errors.Wrap(err, "encoder produced no output"), errors.ErrEncodeFailure)
		progress.Failed(sink, stageEncoding, err)
		return models.VideoArtifact{}, err
	}

	out, err := e.prober.Duration(ctx, req.OutputPath)
	if err != nil {
		e.logger.Warn(ctx, "Cannot probe encoded video: %v", err)
		out = source
	}
	if source > 0 && out > 0 && math.Abs(out-source) > e.cfg.DurationTolerance.Seconds() {
		err = errors.Mark(
			errors.Newf("encoded duration %.2fs differs from source %.2fs", out, source),
			errors.ErrEncodeFailure,
		)
		progress.Failed(sink, stageEncoding, err)
		return models.VideoArtifact{}, err
	}

	progress.Finished(sink, stageEncoding, req.OutputPath)
	e.logger.Info(ctx, "Video encoded successfully: %s (%.1f MB)", req.OutputPath, float64(info.Size())/(1024*1024))

	return models.VideoArtifact{
		Path:       req.OutputPath,
		Resolution: fmt.Sprintf("%dx%d", width, height),
		Duration:   out,
		FPS:        req.FPS,
		SizeBytes:  info.Size(),
	}, nil
}

func (e *implEncoder) withDefaults(req EncodeRequest) EncodeRequest {
	if req.OutputPath == "" {
		req.OutputPath = strings.TrimSuffix(req.AudioPath, filepath.Ext(req.AudioPath)) + ".mp4"
	}
	if req.Resolution == "" {
		req.Resolution = e.cfg.Resolution
	}
	if req.FPS <= 0 {
		req.FPS = e.cfg.FPS
	}
	if req.AudioBitrate == "" {
		req.AudioBitrate = e.cfg.AudioBitrate
	}
	if req.VideoBitrate == "" {
		req.VideoBitrate = e.cfg.VideoBitrate
	}
	return req
}

// parseProgressTime extracts the "time=HH:MM:SS.xx" position from an ffmpeg
// status line, in seconds.
func parseProgressTime(line string) (float64, bool) {
	m := timeRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.ParseFloat(m[3], 64)
	return float64(h*3600+mins*60) + sec, true
}

func formatClock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

func requireFile(path, what string) error {
	if path == "" {
		return errors.Mark(errors.Newf("%s not specified", what), errors.ErrInputNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s not found: %s", what, path), errors.ErrInputNotFound)
	}
	if info.IsDir() {
		return errors.Mark(errors.Newf("%s is a directory: %s", what, path), errors.ErrInputNotFound)
	}
	return nil
}

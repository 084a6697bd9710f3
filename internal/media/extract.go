package media

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

// ExtractAudio extracts the audio track of a container video.
func (e *implEncoder) ExtractAudio(ctx context.Context, videoPath, outputPath, format string) (string, error) {
	if err := requireFile(videoPath, "video file"); err != nil {
		return "", err
	}

	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = "mp3"
	}

	var codec []string
	switch format {
	case "mp3":
		// -q:a 2: VBR around 190 kbps, plenty for speech
		codec = []string{"-acodec", "libmp3lame", "-q:a", "2"}
	case "wav":
		codec = []string{"-acodec", "pcm_s16le"}
	case "aac":
		codec = []string{"-acodec", "copy"}
	default:
		return "", errors.Mark(errors.Newf("unsupported audio format %q", format), errors.ErrInvalidArgument)
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + format
	}

	if _, err := e.executor.LookPath(e.cfg.BinaryPath); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "%s not found", e.cfg.BinaryPath), errors.ErrToolNotFound)
	}

	e.logger.Info(ctx, "Extracting audio: %s -> %s", videoPath, outputPath)

	// -vn: drop the video stream
	args := []string{"-y", "-i", videoPath, "-vn"}
	args = append(args, codec...)
	args = append(args, outputPath)

	if _, err := e.executor.Execute(ctx, e.cfg.BinaryPath, args...); err != nil {
		return "", errors.Mark(errors.Wrap(err, "ffmpeg extract audio"), errors.ErrEncodeFailure)
	}

	e.logger.Info(ctx, "Audio extracted successfully: %s", outputPath)
	return outputPath, nil
}

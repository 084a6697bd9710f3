package media

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/youpy/go-wav"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true,
	".flv": true, ".webm": true, ".m4v": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".aac": true,
	".flac": true, ".ogg": true, ".opus": true,
}

// IsVideo reports whether path has a container-video extension. Such sources
// need their audio extracted before transcription.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudio reports whether path has a supported audio extension.
func IsAudio(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsMedia reports whether path is a recording the pipeline accepts.
func IsMedia(path string) bool {
	return IsAudio(path) || IsVideo(path)
}

// probeOutput mirrors the ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *implProber) Duration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "probe %s", path), errors.ErrInputNotFound)
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		if d, err := wavDuration(path); err == nil {
			return d, nil
		}
	}

	if _, err := p.executor.LookPath(p.binary); err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "%s not found", p.binary), errors.ErrToolNotFound)
	}

	out, err := p.executor.Execute(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "ffprobe %s", path)
	}

	var probe probeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, errors.Wrap(err, "ffprobe JSON parse error")
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, errors.Newf("ffprobe reported no duration for %s", path)
	}
	return d, nil
}

func wavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := wav.NewReader(f).Duration()
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}

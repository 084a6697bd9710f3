package media

import (
	"context"

	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

// Encoder turns an audio track plus a still image into an upload-ready video,
// and extracts audio tracks from container video.
type Encoder interface {
	// Encode renders req into an H.264/AAC MP4 and reports progress to sink.
	Encode(ctx context.Context, req EncodeRequest, sink progress.Sink) (models.VideoArtifact, error)
	// ExtractAudio writes the audio track of videoPath as format (mp3, wav or aac)
	// and returns the written path. An empty outputPath derives one from videoPath.
	ExtractAudio(ctx context.Context, videoPath, outputPath, format string) (string, error)
}

// Prober measures media duration.
type Prober interface {
	// Duration returns the playback length of path in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}

package publisher

import (
	"context"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

type youtubeUploader struct {
	service *youtube.Service
}

// NewYouTubeUploader creates an Uploader for the YouTube Data API v3.
func NewYouTubeUploader(ctx context.Context, ts oauth2.TokenSource) (Uploader, error) {
	svc, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, errors.Wrap(err, "create YouTube client")
	}
	return &youtubeUploader{service: svc}, nil
}

func (u *youtubeUploader) Insert(ctx context.Context, video *youtube.Video, media io.Reader, chunkSize int, onProgress googleapi.ProgressUpdater) (*youtube.Video, error) {
	call := u.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media, googleapi.ChunkSize(chunkSize)).
		Context(ctx)
	if onProgress != nil {
		call = call.ProgressUpdater(onProgress)
	}
	return call.Do()
}

package publisher

import (
	"context"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"

	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

// Publisher uploads encoded videos to YouTube.
type Publisher interface {
	// Publish uploads req.VideoPath and returns the resulting link.
	Publish(ctx context.Context, req PublishRequest, sink progress.Sink) (models.PublishedLink, error)
	// Bootstrap runs the interactive consent flow and persists the token.
	Bootstrap(ctx context.Context) error
}

// CredentialStore resolves OAuth credentials for the upload scope.
type CredentialStore interface {
	// TokenSource returns a source backed by the persisted token, falling back
	// to interactive consent when allowed.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
	// Authorize always runs the interactive flow and persists the new token.
	Authorize(ctx context.Context) error
}

// Uploader inserts one video with resumable media.
type Uploader interface {
	Insert(ctx context.Context, video *youtube.Video, media io.Reader, chunkSize int, onProgress googleapi.ProgressUpdater) (*youtube.Video, error)
}

// UploaderFactory builds an Uploader authenticated by ts.
type UploaderFactory func(ctx context.Context, ts oauth2.TokenSource) (Uploader, error)

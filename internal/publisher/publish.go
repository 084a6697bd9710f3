package publisher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/youtube/v3"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

const (
	stage      = string(models.StatePublishing)
	watchURL   = "https://www.youtube.com/watch?v="
	maxTitle   = 100
	defaultMiB = 10
)

// PublishRequest describes one upload. Empty Visibility means unlisted; nil
// Tags use the configured defaults.
type PublishRequest struct {
	VideoPath   string
	Title       string
	Description string
	Tags        []string
	Visibility  models.Visibility
}

// Publish uploads the video and returns its link once the API has assigned an id.
func (p *implPublisher) Publish(ctx context.Context, req PublishRequest, sink progress.Sink) (models.PublishedLink, error) {
	sink = progress.OrNop(sink)

	f, err := os.Open(req.VideoPath)
	if err != nil {
		return models.PublishedLink{}, errors.Mark(errors.Wrapf(err, "video file not found: %s", req.VideoPath), errors.ErrInputNotFound)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return models.PublishedLink{}, errors.Mark(errors.Newf("video file not readable: %s", req.VideoPath), errors.ErrInputNotFound)
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityUnlisted
	}
	if !visibility.Valid() {
		return models.PublishedLink{}, errors.Mark(errors.Newf("unknown visibility %q", visibility), errors.ErrInvalidArgument)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(req.VideoPath), filepath.Ext(req.VideoPath))
	}
	if r := []rune(title); len(r) > maxTitle {
		title = string(r[:maxTitle])
	}

	tags := req.Tags
	if tags == nil {
		tags = p.cfg.Tags
	}

	ts, err := p.creds.TokenSource(ctx)
	if err != nil {
		return models.PublishedLink{}, err
	}

	uploader, err := p.newUploader(ctx, ts)
	if err != nil {
		return models.PublishedLink{}, errors.Mark(err, errors.ErrUploadFailure)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: req.Description,
			Tags:        tags,
			CategoryId:  p.cfg.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           string(visibility),
			SelfDeclaredMadeForKids: false,
			// false is the zero value and would otherwise be omitted
			ForceSendFields: []string{"SelfDeclaredMadeForKids"},
		},
	}

	chunkMiB := p.cfg.ChunkSizeMB
	if chunkMiB <= 0 {
		chunkMiB = defaultMiB
	}

	size := info.Size()
	p.logger.Info(ctx, "Uploading %s (%.1f MB) as %s", req.VideoPath, float64(size)/(1024*1024), visibility)
	progress.Started(sink, stage, title)

	onProgress := func(current, total int64) {
		if total <= 0 {
			total = size
		}
		if total > 0 {
			progress.Advance(sink, stage, float64(current)/float64(total), "")
		}
	}

	resp, err := uploader.Insert(ctx, video, f, chunkMiB<<20, onProgress)
	if err != nil {
		if !errors.Is(err, errors.ErrMissingCredential) {
			err = errors.Mark(errors.Wrap(err, "upload video"), errors.ErrUploadFailure)
		}
		progress.Failed(sink, stage, err)
		return models.PublishedLink{}, err
	}
	if resp == nil || resp.Id == "" {
		err := errors.Mark(errors.New("upload finished without a video id"), errors.ErrUploadFailure)
		progress.Failed(sink, stage, err)
		return models.PublishedLink{}, err
	}

	link := models.PublishedLink{
		ID:          resp.Id,
		URL:         watchURL + resp.Id,
		Visibility:  visibility,
		Title:       title,
		Description: req.Description,
	}
	progress.Finished(sink, stage, link.URL)
	p.logger.Info(ctx, "Upload complete: %s", link.URL)
	return link, nil
}

// Bootstrap forces the consent flow so later runs can publish unattended.
func (p *implPublisher) Bootstrap(ctx context.Context) error {
	return p.creds.Authorize(ctx)
}

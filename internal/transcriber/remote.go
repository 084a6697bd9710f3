package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

// verboseResponse mirrors the verbose_json transcription response.
type verboseResponse struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// progressReader wraps an io.Reader and reports upload progress.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback func(read, total int64)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)
	if pr.callback != nil {
		pr.callback(pr.read, pr.total)
	}
	return n, err
}

func (e *remoteEngine) Name() string { return MethodRemote }

// Transcribe uploads the audio file and decodes the segment-level response.
func (e *remoteEngine) Transcribe(ctx context.Context, req EngineRequest, sink progress.Sink) (models.TranscriptionResult, error) {
	apiKey := req.APIKey
	if apiKey == "" && e.cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(e.cfg.APIKeyEnv)
	}
	if apiKey == "" {
		return models.TranscriptionResult{}, errors.WithHintf(
			errors.Mark(errors.New("no API key for remote transcription"), errors.ErrMissingCredential),
			"set %s or pass --api-key", e.cfg.APIKeyEnv,
		)
	}

	f, err := os.Open(req.AudioPath)
	if err != nil {
		return models.TranscriptionResult{}, errors.Mark(errors.Wrap(err, "open audio"), errors.ErrInputNotFound)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return models.TranscriptionResult{}, errors.Wrap(err, "stat audio")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		errCh <- writeForm(mw, pw, f, req, e.cfg.Model)
	}()

	body := &progressReader{
		reader: pr,
		// file size plus ~1KB of form overhead
		total: stat.Size() + 1024,
		callback: func(read, total int64) {
			progress.Advance(sink, stage, float64(read)/float64(total), "uploading")
		},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, body)
	if err != nil {
		pr.CloseWithError(err)
		return models.TranscriptionResult{}, errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	e.logger.Info(ctx, "Uploading %s to %s (%.1f MB)", filepath.Base(req.AudioPath), e.cfg.Endpoint, float64(stat.Size())/(1024*1024))

	resp, err := e.client.Do(httpReq)
	if err != nil {
		pr.CloseWithError(err)
		return models.TranscriptionResult{}, errors.Mark(errors.Wrap(err, "HTTP request failed"), errors.ErrEngineFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		pr.CloseWithError(io.ErrClosedPipe)
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := errors.Newf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		if resp.StatusCode == http.StatusUnauthorized {
			return models.TranscriptionResult{}, errors.Mark(err, errors.ErrMissingCredential)
		}
		return models.TranscriptionResult{}, errors.Mark(err, errors.ErrEngineFailure)
	}

	if writeErr := <-errCh; writeErr != nil {
		return models.TranscriptionResult{}, errors.Mark(errors.Wrap(writeErr, "multipart write error"), errors.ErrEngineFailure)
	}

	var out verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.TranscriptionResult{}, errors.Mark(errors.Wrap(err, "decode response"), errors.ErrEngineFailure)
	}

	duration := out.Duration
	if e.prober != nil {
		d, err := e.prober.Duration(ctx, req.AudioPath)
		switch {
		case err != nil:
			e.logger.Warn(ctx, "Cannot probe audio duration, using the API value: %v", err)
		case d > 0:
			duration = d
		}
	}

	segments := make([]models.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segments = append(segments, models.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}

	return models.TranscriptionResult{
		AudioFile: req.AudioPath,
		Language:  out.Language,
		Duration:  duration,
		Engine:    MethodRemote,
		Model:     e.cfg.Model,
		Segments:  segments,
		FullText:  strings.TrimSpace(out.Text),
	}, nil
}

func writeForm(mw *multipart.Writer, pw *io.PipeWriter, f *os.File, req EngineRequest, model string) (err error) {
	defer func() {
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	fields := [][2]string{
		{"model", model},
		{"response_format", "verbose_json"},
		{"timestamp_granularities[]", "segment"},
	}
	if req.Language != "" && req.Language != "auto" {
		fields = append(fields, [2]string{"language", req.Language})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(req.AudioPath)))
	h.Set("Content-Type", mimeFromExt(filepath.Ext(req.AudioPath)))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func mimeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/m4a"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}

package publisher

import (
	"net/http"
	"os"
	"runtime"

	"github.com/pkg/browser"

	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
)

type implPublisher struct {
	cfg         config.PublishConfig
	creds       CredentialStore
	newUploader UploaderFactory
	logger      logger.Logger
}

// New creates a Publisher. A nil factory uploads through the YouTube Data API.
func New(cfg config.PublishConfig, creds CredentialStore, factory UploaderFactory, log logger.Logger) Publisher {
	if factory == nil {
		factory = NewYouTubeUploader
	}
	return &implPublisher{
		cfg:         cfg,
		creds:       creds,
		newUploader: factory,
		logger:      log,
	}
}

type credentialStore struct {
	cfg        config.PublishConfig
	logger     logger.Logger
	openURL    func(url string) error
	hasDisplay func() bool
	httpClient *http.Client
}

// NewCredentialStore creates a file-backed CredentialStore using the client
// secrets and token paths from cfg.
func NewCredentialStore(cfg config.PublishConfig, log logger.Logger) CredentialStore {
	return &credentialStore{
		cfg:        cfg,
		logger:     log,
		openURL:    browser.OpenURL,
		hasDisplay: hasDisplay,
	}
}

// hasDisplay reports whether a browser could plausibly be opened.
func hasDisplay() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

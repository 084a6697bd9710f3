package transcriber

import (
	"net/http"

	"github.com/nguyentantai21042004/meeting-flow/internal/advisor"
	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/media"
	"github.com/nguyentantai21042004/meeting-flow/pkg/executor"
)

type implTranscriber struct {
	method   string
	language string
	engines  map[string]Engine
	logger   logger.Logger
}

// New creates a Transcriber dispatching to the given engines by name.
func New(cfg config.TranscriptionConfig, log logger.Logger, engines ...Engine) Transcriber {
	t := &implTranscriber{
		method:   cfg.Method,
		language: cfg.Language,
		engines:  make(map[string]Engine, len(engines)),
		logger:   log,
	}
	for _, e := range engines {
		t.engines[e.Name()] = e
	}
	return t
}

type localEngine struct {
	cfg      config.TranscriptionConfig
	executor executor.Executor
	advisor  advisor.Advisor
	prober   media.Prober
	logger   logger.Logger
}

// NewLocalEngine creates the on-machine engine backed by whisper-ctranslate2.
func NewLocalEngine(cfg config.TranscriptionConfig, exec executor.Executor, adv advisor.Advisor, prober media.Prober, log logger.Logger) Engine {
	return &localEngine{
		cfg:      cfg,
		executor: exec,
		advisor:  adv,
		prober:   prober,
		logger:   log,
	}
}

type remoteEngine struct {
	cfg    config.RemoteConfig
	client *http.Client
	prober media.Prober
	logger logger.Logger
}

// NewRemoteEngine creates an engine for an OpenAI-compatible transcription API.
// A nil client gets one with the configured timeout. When prober is set the
// probed duration of the uploaded file wins over the one the API reports.
func NewRemoteEngine(cfg config.RemoteConfig, client *http.Client, prober media.Prober, log logger.Logger) Engine {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &remoteEngine{
		cfg:    cfg,
		client: client,
		prober: prober,
		logger: log,
	}
}

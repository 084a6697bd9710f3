package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/meeting-flow/internal/advisor"
	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/ledger"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/media"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
	"github.com/nguyentantai21042004/meeting-flow/internal/prompts"
	"github.com/nguyentantai21042004/meeting-flow/internal/publisher"
	"github.com/nguyentantai21042004/meeting-flow/internal/summarizer"
	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
	"github.com/nguyentantai21042004/meeting-flow/pkg/executor"
)

// app holds what every command shares: configuration, logger, subprocess
// runner and progress sink. Adapters are built on demand.
type app struct {
	cfg  *config.Config
	log  logger.Logger
	exec executor.Executor
	sink progress.Sink
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:  cfg,
		log:  log,
		exec: executor.New(),
		sink: newSink(),
	}, nil
}

// loadConfig reads --config, or ./config.yaml when present, or the defaults.
func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, files ...string) (logger.Logger, error) {
	opts := logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Files:  files,
	}
	switch {
	case verbose:
		opts.Level = "debug"
	case quiet:
		opts.Level = "error"
	}
	if jsonLog {
		opts.Format = "json"
	}
	return logger.NewWithOptions(opts)
}

func newSink() progress.Sink {
	switch {
	case quiet:
		return progress.Nop
	case jsonLog:
		return progress.Throttle(progress.NewJSON(os.Stderr), time.Second)
	default:
		return progress.Throttle(progress.NewCLI(verbose), 500*time.Millisecond)
	}
}

func (a *app) close() {
	_ = a.log.Sync()
}

func (a *app) advisor() advisor.Advisor {
	return advisor.New(a.exec, a.log)
}

func (a *app) prober() media.Prober {
	return media.NewProber(a.cfg.Encoder.ProbePath, a.exec)
}

func (a *app) encoder() media.Encoder {
	return media.New(a.cfg.Encoder, a.exec, a.prober(), a.log)
}

func (a *app) transcriber() transcriber.Transcriber {
	return transcriber.New(a.cfg.Transcription, a.log,
		transcriber.NewLocalEngine(a.cfg.Transcription, a.exec, a.advisor(), a.prober(), a.log),
		transcriber.NewRemoteEngine(a.cfg.Transcription.Remote, nil, a.prober(), a.log),
	)
}

func (a *app) credentials() publisher.CredentialStore {
	return publisher.NewCredentialStore(a.cfg.Publish, a.log)
}

func (a *app) publisher() publisher.Publisher {
	return publisher.New(a.cfg.Publish, a.credentials(), nil, a.log)
}

func (a *app) ledger() ledger.Ledger {
	return ledger.New(a.cfg.Paths.Ledger, a.log)
}

func (a *app) prompts() prompts.Renderer {
	return prompts.New(a.cfg.Paths.Templates, a.log)
}

func (a *app) summarizer() summarizer.Summarizer {
	return summarizer.New(a.cfg.Summarizer, a.prompts(), nil, a.log)
}

func (a *app) orchestrator() pipeline.Orchestrator {
	return pipeline.New(a.cfg, pipeline.Deps{
		Transcriber: a.transcriber(),
		Encoder:     a.encoder(),
		Publisher:   a.publisher(),
		Ledger:      a.ledger(),
		Prompts:     a.prompts(),
		RunLogger:   a.runLogger,
	}, a.log)
}

// runLogger tees the run's log into <output_dir>/<stem>_log.txt.
func (a *app) runLogger(run models.Run) (logger.Logger, error) {
	stem := strings.TrimSuffix(filepath.Base(run.SourcePath), filepath.Ext(run.SourcePath))
	return newLogger(a.cfg, filepath.Join(run.OutputDir, stem+"_log.txt"))
}

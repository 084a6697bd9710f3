package media

import (
	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/pkg/executor"
)

type implEncoder struct {
	cfg      config.EncoderConfig
	executor executor.Executor
	prober   Prober
	logger   logger.Logger
}

// New creates an ffmpeg-backed Encoder.
func New(cfg config.EncoderConfig, exec executor.Executor, prober Prober, log logger.Logger) Encoder {
	return &implEncoder{
		cfg:      cfg,
		executor: exec,
		prober:   prober,
		logger:   log,
	}
}

type implProber struct {
	binary   string
	executor executor.Executor
}

// NewProber creates a Prober that reads WAV headers natively and asks
// ffprobe for everything else.
func NewProber(ffprobe string, exec executor.Executor) Prober {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &implProber{binary: ffprobe, executor: exec}
}

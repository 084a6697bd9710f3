package pipeline

import (
	"time"

	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/ledger"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/media"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/prompts"
	"github.com/nguyentantai21042004/meeting-flow/internal/publisher"
	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
)

// Deps are the adapters a pipeline run drives. Prompts and RunLogger may be nil.
type Deps struct {
	Transcriber transcriber.Transcriber
	Encoder     media.Encoder
	Publisher   publisher.Publisher
	Ledger      ledger.Ledger
	Prompts     prompts.Renderer
	Clock       func() time.Time
	// RunLogger is called once the run's number, date and output dir are
	// resolved. The returned logger is used for the rest of the run.
	RunLogger func(run models.Run) (logger.Logger, error)
}

type implOrchestrator struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
}

// New creates an Orchestrator.
func New(cfg *config.Config, deps Deps, log logger.Logger) Orchestrator {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &implOrchestrator{
		cfg:    cfg,
		deps:   deps,
		logger: log,
	}
}

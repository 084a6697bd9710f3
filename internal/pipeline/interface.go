package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

// Orchestrator drives one recording through transcribe, encode, publish and
// ledger append.
type Orchestrator interface {
	// Run executes the full pipeline. A failure is returned as *StageError.
	Run(ctx context.Context, req Request, sink progress.Sink) (models.Summary, error)
}

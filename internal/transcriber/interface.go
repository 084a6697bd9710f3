package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/progress"
)

// Engine is one speech-to-text backend.
type Engine interface {
	// Name is the method key the engine is selected by ("local", "remote").
	Name() string
	// Transcribe converts one audio file into a transcription result. The
	// result may still need normalization.
	Transcribe(ctx context.Context, req EngineRequest, sink progress.Sink) (models.TranscriptionResult, error)
}

// Transcriber selects an engine, normalizes its result and writes the
// transcript artifacts.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request, sink progress.Sink) (Output, error)
}

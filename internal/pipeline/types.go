package pipeline

import (
	"fmt"

	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
)

// DateLayout is the meeting date format.
const DateLayout = "2006-01-02"

// Request is one pipeline invocation. Zero values fall back to the ledger
// (Number), today's date (Date) and the configuration (the rest).
type Request struct {
	SourcePath string
	Number     int
	Date       string
	Language   string
	Background string
	Visibility models.Visibility
	NotesPath  string
	Engine     transcriber.EngineConfig
}

// StageError reports the state a run failed in. It unwraps to the adapter error.
type StageError struct {
	Stage models.State
	Run   models.Run
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

package transcriber

import (
	"github.com/nguyentantai21042004/meeting-flow/internal/advisor"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
)

const (
	MethodLocal  = "local"
	MethodRemote = "remote"

	stage = string(models.StateTranscribing)
)

// EngineConfig selects and tunes the engine for one run.
type EngineConfig struct {
	// Method is "local" or "remote". Empty uses the configured default.
	Method string
	// Overrides replace the advisor's recommendation for the local engine.
	Overrides advisor.Overrides
	// APIKey is used by the remote engine before falling back to the environment.
	APIKey string
}

// Request is one transcription job.
type Request struct {
	AudioPath string
	Language  string
	OutputDir string
	Engine    EngineConfig
}

// EngineRequest is what an Engine receives.
type EngineRequest struct {
	AudioPath string
	Language  string
	Overrides advisor.Overrides
	APIKey    string
}

// Output is a normalized result plus the artifacts written for it.
type Output struct {
	Result    models.TranscriptionResult
	JSONPath  string
	TextPath  string
	PlainPath string
}

type segmentDoc struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Text           string  `json:"text"`
	StartFormatted string  `json:"start_formatted"`
	EndFormatted   string  `json:"end_formatted"`
}

// transcriptDoc is the on-disk JSON artifact.
type transcriptDoc struct {
	AudioFile         string       `json:"audio_file"`
	Language          string       `json:"language"`
	Duration          float64      `json:"duration"`
	DurationFormatted string       `json:"duration_formatted"`
	Engine            string       `json:"engine"`
	Model             string       `json:"model,omitempty"`
	Device            string       `json:"device,omitempty"`
	ComputeType       string       `json:"compute_type,omitempty"`
	Segments          []segmentDoc `json:"segments"`
	FullText          string       `json:"full_text"`
}

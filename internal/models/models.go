package models

import "time"

// State is a position in the run lifecycle.
type State string

const (
	StateInit         State = "init"
	StateTranscribing State = "transcribing"
	StateEncoding     State = "encoding"
	StatePublishing   State = "publishing"
	StatePersisted    State = "persisted"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Run is one invocation of the pipeline for one source recording.
type Run struct {
	ID         string    `json:"id"`
	Number     int       `json:"number"`
	Date       string    `json:"date"`
	SourcePath string    `json:"source_path"`
	AudioPath  string    `json:"audio_path"`
	OutputDir  string    `json:"output_dir"`
	Status     State     `json:"status"`
	FailedAt   State     `json:"failed_at,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// Segment is one bounded time span of transcribed text. Times are seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResult is the engine-independent transcription output.
type TranscriptionResult struct {
	AudioFile   string    `json:"audio_file"`
	Language    string    `json:"language"`
	Duration    float64   `json:"duration"`
	Engine      string    `json:"engine"`
	Model       string    `json:"model"`
	Device      string    `json:"device,omitempty"`
	ComputeType string    `json:"compute_type,omitempty"`
	Segments    []Segment `json:"segments"`
	FullText    string    `json:"full_text"`
}

// VideoArtifact is one successfully encoded media file.
type VideoArtifact struct {
	Path       string  `json:"path"`
	Resolution string  `json:"resolution"`
	Duration   float64 `json:"duration"`
	FPS        int     `json:"fps"`
	SizeBytes  int64   `json:"size_bytes"`
}

// Visibility is the access level of a published video.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

// Valid reports whether v is one of the known levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return true
	}
	return false
}

// PublishedLink is the result of a successful upload. It is never mutated.
type PublishedLink struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Visibility  Visibility `json:"visibility"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// Summary is what a completed run reports back to its caller.
type Summary struct {
	Number         int    `json:"number"`
	URL            string `json:"url"`
	VideoPath      string `json:"video_path"`
	TranscriptPath string `json:"transcript_path"`
	OutputDir      string `json:"output_dir"`
}

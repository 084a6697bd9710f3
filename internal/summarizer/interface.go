package summarizer

import "context"

// Summarizer drafts highlights for a processed run and renders the run's
// documents as .docx.
type Summarizer interface {
	Summarize(ctx context.Context, runDir string, opts Options) (Result, error)
}

// Options control one Summarize call.
type Options struct {
	// Force regenerates highlights.md even when one already exists.
	Force bool
}

// Result lists the files Summarize wrote or reused.
type Result struct {
	HighlightsPath     string
	HighlightsDocxPath string
	TranscriptDocxPath string
	Generated          bool
}

// Generator sends one prompt to a model and returns the reply text.
type Generator func(ctx context.Context, apiKey, model, prompt string) (string, error)

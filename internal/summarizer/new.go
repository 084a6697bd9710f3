package summarizer

import (
	"os"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/prompts"
)

type implSummarizer struct {
	apiKeys    []string
	currentKey int
	model      string
	prompts    prompts.Renderer
	generate   Generator
	logger     logger.Logger
}

// New creates a Summarizer that rotates through the Gemini API keys found in
// the configured environment variables. A nil generator calls Gemini.
func New(cfg config.SummarizerConfig, renderer prompts.Renderer, generate Generator, log logger.Logger) Summarizer {
	if generate == nil {
		generate = geminiGenerate
	}
	return &implSummarizer{
		apiKeys:  KeysFromEnv(cfg.APIKeyEnvs),
		model:    cfg.Model,
		prompts:  renderer,
		generate: generate,
		logger:   log,
	}
}

// KeysFromEnv collects API keys from the named variables. A variable may hold
// several comma-separated keys.
func KeysFromEnv(names []string) []string {
	var keys []string
	for _, name := range names {
		for _, k := range strings.Split(os.Getenv(name), ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

package summarizer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/prompts"
)

const (
	highlightsFile     = "highlights.md"
	highlightsDocxFile = "highlights.docx"
	transcriptDocxFile = "transcript.docx"
)

// Summarize drafts highlights.md from the run's timestamped transcript unless
// one exists already, then renders highlights.docx and transcript.docx.
func (s *implSummarizer) Summarize(ctx context.Context, runDir string, opts Options) (Result, error) {
	transcriptPath, err := findTranscript(runDir)
	if err != nil {
		return Result{}, err
	}

	transcript, err := os.ReadFile(transcriptPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "read transcript")
	}

	res := Result{
		HighlightsPath:     filepath.Join(runDir, highlightsFile),
		HighlightsDocxPath: filepath.Join(runDir, highlightsDocxFile),
		TranscriptDocxPath: filepath.Join(runDir, transcriptDocxFile),
	}
	title := filepath.Base(runDir)

	var highlights string
	existing, err := os.ReadFile(res.HighlightsPath)
	switch {
	case err == nil && !opts.Force:
		s.logger.Info(ctx, "Keeping existing %s (use --force to regenerate)", res.HighlightsPath)
		highlights = string(existing)
	case err != nil && !os.IsNotExist(err):
		return Result{}, errors.Wrap(err, "read highlights")
	default:
		prompt, err := s.prompts.Render(prompts.KindHighlights, prompts.Data{
			Transcript: string(transcript),
		})
		if err != nil {
			return Result{}, err
		}

		s.logger.Info(ctx, "Drafting highlights with %s: %s", s.model, title)
		reply, err := s.callGemini(ctx, prompt)
		if err != nil {
			return Result{}, err
		}
		highlights = strings.TrimSpace(reply) + "\n"
		if err := os.WriteFile(res.HighlightsPath, []byte(highlights), 0644); err != nil {
			return Result{}, errors.Wrap(err, "write highlights")
		}
		res.Generated = true
	}

	if err := markdownToDocx(title, highlights, res.HighlightsDocxPath); err != nil {
		return Result{}, errors.Wrap(err, "write highlights docx")
	}
	if err := transcriptToDocx(title, string(transcript), res.TranscriptDocxPath); err != nil {
		return Result{}, errors.Wrap(err, "write transcript docx")
	}

	s.logger.Info(ctx, "[DONE] %s -> %s, %s", title, res.HighlightsDocxPath, res.TranscriptDocxPath)
	return res, nil
}

// callGemini sends the prompt and returns the reply text.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, prompt string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", errors.WithHint(
			errors.Mark(errors.New("no Gemini API key configured"), errors.ErrMissingCredential),
			"set GEMINI_API_KEY (comma-separated for several keys)",
		)
	}

	var lastErr error
	for range s.apiKeys {
		key := s.apiKeys[s.currentKey]

		text, err := s.generate(ctx, key, s.model, prompt)
		if err != nil {
			if isQuotaError(err) {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", s.currentKey+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", errors.Wrap(err, "generate content")
		}
		if strings.TrimSpace(text) == "" {
			return "", errors.New("empty response from Gemini")
		}
		return text, nil
	}

	return "", errors.Wrap(lastErr, "all API keys exhausted")
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func (s *implSummarizer) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

// geminiGenerate is the Generator backed by the Gemini API.
func geminiGenerate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", errors.Wrap(err, "create client")
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		return text.String(), nil
	}
	return "", nil
}

// findTranscript returns the single *_transcript.txt in dir.
func findTranscript(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_transcript.txt"))
	if err != nil {
		return "", errors.Wrap(err, "find transcript")
	}
	switch len(matches) {
	case 0:
		return "", errors.Mark(errors.Newf("no *_transcript.txt in %s", dir), errors.ErrInputNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", errors.Mark(errors.Newf("several transcripts in %s: %s", dir, strings.Join(matches, ", ")), errors.ErrInvalidArgument)
	}
}

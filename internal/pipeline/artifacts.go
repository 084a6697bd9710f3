package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/prompts"
)

// writePrompts saves the highlight and summary prompts next to the
// transcript. Failures only warn: the prompts are a convenience.
func (o *implOrchestrator) writePrompts(ctx context.Context, r *run) {
	if o.deps.Prompts == nil {
		return
	}

	transcript, err := os.ReadFile(r.transcript.TextPath)
	if err != nil {
		r.log.Warn(ctx, "Skipping prompts, cannot read transcript: %v", err)
		return
	}

	notes := ""
	if r.req.NotesPath != "" {
		data, err := os.ReadFile(r.req.NotesPath)
		if err != nil {
			r.log.Warn(ctx, "Cannot read notes %s: %v", r.req.NotesPath, err)
		} else {
			notes = string(data)
		}
	}

	data := prompts.Data{Transcript: string(transcript), Notes: notes, Date: r.Date}
	files := []struct {
		kind prompts.Kind
		name string
	}{
		{prompts.KindHighlights, "prompt_01_highlights.txt"},
		{prompts.KindSummary, "prompt_02_summary.txt"},
	}
	for _, f := range files {
		text, err := o.deps.Prompts.Render(f.kind, data)
		if err != nil {
			r.log.Warn(ctx, "Cannot render %s prompt: %v", f.kind, err)
			continue
		}
		if err := o.deps.Prompts.Save(text, filepath.Join(r.OutputDir, f.name)); err != nil {
			r.log.Warn(ctx, "Cannot save %s: %v", f.name, err)
		}
	}
}

// writeReadme lists the run's artifacts in README.md. Best effort.
func (o *implOrchestrator) writeReadme(ctx context.Context, r *run) {
	stem := strings.TrimSuffix(filepath.Base(r.AudioPath), filepath.Ext(r.AudioPath))

	var b strings.Builder
	fmt.Fprintf(&b, "# Spotkanie #%d %s\n\n", r.Number, r.Date)
	fmt.Fprintf(&b, "Nagranie: %s\n\n", r.link.URL)
	b.WriteString("## Pliki\n\n")
	fmt.Fprintf(&b, "- `%s_transcript.txt` - transkrypt z timestampami\n", stem)
	fmt.Fprintf(&b, "- `%s_plain.txt` - czysty tekst\n", stem)
	fmt.Fprintf(&b, "- `%s_transcript.json` - segmenty i metadane\n", stem)
	fmt.Fprintf(&b, "- `%s` - wideo\n\n", filepath.Base(r.video.Path))
	b.WriteString("## Prompty\n\n")
	b.WriteString("- `prompt_01_highlights.txt` - wynik zapisz jako `highlights.md`\n")
	b.WriteString("- `prompt_02_summary.txt` - wynik zapisz jako `meeting-transcript.md`\n")

	if err := os.WriteFile(filepath.Join(r.OutputDir, "README.md"), []byte(b.String()), 0644); err != nil {
		r.log.Warn(ctx, "Cannot write README.md: %v", err)
	}
}

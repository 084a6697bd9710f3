package publisher

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

// DescriptionInput holds the parts of a video description.
type DescriptionInput struct {
	Date           string
	Agenda         string
	Highlights     string
	TranscriptLink string
	Footer         string
}

// Describe composes the video description. Empty sections are omitted.
func Describe(in DescriptionInput) string {
	parts := []string{
		"Nagranie spotkania Sekcji Koła Naukowego z dnia " + in.Date + ".",
		"",
	}

	if agenda := strings.TrimSpace(in.Agenda); agenda != "" {
		parts = append(parts, "📋 AGENDA:", agenda, "")
	}
	if highlights := strings.TrimSpace(in.Highlights); highlights != "" {
		parts = append(parts, "⭐ NAJWAŻNIEJSZE PUNKTY:", highlights, "")
	}
	if in.TranscriptLink != "" {
		parts = append(parts, "📝 Pełny transkrypt: "+in.TranscriptLink, "")
	}

	if in.Footer != "" {
		parts = append(parts, "---", in.Footer)
	}
	return strings.TrimRight(strings.Join(parts, "\n"), "\n")
}

// TitleData is the data available to the title template.
type TitleData struct {
	Number int
	Date   string
}

// Title renders the configured title template, e.g.
// "Spotkanie SKNWPL #{{.Number}} - {{.Date}}".
func Title(tmpl string, data TitleData) (string, error) {
	t, err := template.New("title").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "parse title template"), errors.ErrInvalidArgument)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Mark(errors.Wrap(err, "render title"), errors.ErrInvalidArgument)
	}
	return strings.TrimSpace(buf.String()), nil
}

package prompts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/atotto/clipboard"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

// Kind names a prompt template.
type Kind string

const (
	KindHighlights Kind = "highlights"
	KindAgenda     Kind = "agenda"
	KindSummary    Kind = "summary"
	KindMetadata   Kind = "metadata"
	KindCleanup    Kind = "cleanup"
)

// Kinds lists every template in presentation order.
var Kinds = []Kind{KindHighlights, KindSummary, KindAgenda, KindMetadata, KindCleanup}

// ParseKind validates a template name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.Mark(errors.Newf("unknown prompt type %q", s), errors.ErrInvalidArgument)
}

// Data is what the templates can reference.
type Data struct {
	Transcript string
	Notes      string
	Date       string
	Highlights string
	Topic      string
	VideoURL   string
}

func (r *implRenderer) Render(kind Kind, data Data) (string, error) {
	src, err := r.source(kind)
	if err != nil {
		return "", err
	}

	t, err := template.New(string(kind)).Parse(src)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "parse %s template", kind), errors.ErrInvalidArgument)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "render %s prompt", kind)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (r *implRenderer) source(kind Kind) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	name := string(kind) + ".txt"

	if r.dir != "" {
		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "read template %s", name)
		}
	}

	data, err := builtin.ReadFile("templates/" + name)
	if err != nil {
		return "", errors.Wrapf(err, "built-in template %s", name)
	}
	return string(data), nil
}

func (r *implRenderer) Save(text, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create prompt dir")
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errors.Wrap(err, "write prompt")
	}
	r.logger.Info(context.Background(), "Prompt saved: %s", path)
	return nil
}

func (r *implRenderer) Copy(text string) error {
	if clipboard.Unsupported {
		return errors.WithHint(errors.New("clipboard is not available"), "install xclip, xsel or wl-clipboard")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errors.Wrap(err, "copy to clipboard")
	}
	return nil
}

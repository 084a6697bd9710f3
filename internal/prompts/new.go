package prompts

import (
	"embed"

	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
)

//go:embed templates/*.txt
var builtin embed.FS

type implRenderer struct {
	dir    string
	logger logger.Logger
}

// New creates a Renderer. Templates in dir named "<kind>.txt" replace the
// built-in ones; an empty dir uses only the built-ins.
func New(dir string, log logger.Logger) Renderer {
	return &implRenderer{dir: dir, logger: log}
}

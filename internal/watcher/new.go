package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
)

const (
	defaultSettle = 2 * time.Second
	queueSize     = 64
)

// New creates a Watcher on inputDir. A file is handed over once its size has
// stopped changing for settle (default 2s).
func New(inputDir string, handler EventHandler, log logger.Logger, settle time.Duration) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}

	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "add watch path %s", inputDir)
	}

	if settle <= 0 {
		settle = defaultSettle
	}

	return &implWatcher{
		inputDir: inputDir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		settle:   settle,
		queue:    make(chan string, queueSize),
		pending:  make(map[string]bool),
	}, nil
}

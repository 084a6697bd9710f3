package watcher

import "context"

// Watcher monitors the inbox directory for new recordings.
type Watcher interface {
	// Start blocks until ctx is cancelled, handing each new recording to the
	// handler. Recordings are handled strictly one at a time, in arrival order.
	// Cancelling ctx also cancels the recording being handled; Start returns
	// once the handler has returned.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one recording.
type EventHandler func(ctx context.Context, filePath string) error

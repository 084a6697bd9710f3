package ledger

import (
	"time"

	"github.com/gofrs/flock"

	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
)

const lockRetry = 50 * time.Millisecond

type implLedger struct {
	path   string
	lock   *flock.Flock
	logger logger.Logger
}

// New creates a Ledger stored at path. Writers serialize on "<path>.lock".
func New(path string, log logger.Logger) Ledger {
	return &implLedger{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: log,
	}
}

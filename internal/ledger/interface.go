package ledger

import "context"

// Ledger is the append-only record of published runs, one "<n> - <url>" per line.
type Ledger interface {
	// Next returns the sequence number for the next run: 1 for a missing or
	// empty ledger, otherwise the last entry's number plus one.
	Next(ctx context.Context) (int, error)
	// Entries returns every entry in file order. Any malformed line fails.
	Entries(ctx context.Context) ([]Entry, error)
	// Lookup finds the entry recorded for number. It reads the file the same
	// way Append does, so a nil error means Append will not fail on parsing.
	Lookup(ctx context.Context, number int) (Entry, bool, error)
	// Append records number -> url. It fails with ErrLedgerConflict when the
	// number is already present. Malformed lines other than the last are skipped.
	Append(ctx context.Context, number int, url string) error
}

// Entry is one ledger line.
type Entry struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
	Line   int    `json:"line"`
}

package ledger

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

const separator = " - "

func (l *implLedger) Next(ctx context.Context) (int, error) {
	entries, err := l.read(false)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 1, nil
	}
	return entries[len(entries)-1].Number + 1, nil
}

func (l *implLedger) Entries(ctx context.Context) ([]Entry, error) {
	return l.read(true)
}

func (l *implLedger) Lookup(ctx context.Context, number int) (Entry, bool, error) {
	entries, err := l.read(false)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.Number == number {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func (l *implLedger) Append(ctx context.Context, number int, url string) error {
	if number <= 0 {
		return errors.Mark(errors.Newf("sequence number must be positive, got %d", number), errors.ErrInvalidArgument)
	}
	url = strings.TrimSpace(url)
	if url == "" || strings.ContainsAny(url, "\r\n") {
		return errors.Mark(errors.Newf("invalid URL %q", url), errors.ErrInvalidArgument)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.Wrap(err, "create ledger dir")
	}

	locked, err := l.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return errors.Wrap(err, "lock ledger")
	}
	if !locked {
		return errors.Newf("could not lock %s", l.lock.Path())
	}
	defer l.lock.Unlock()

	entries, err := l.read(false)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Number == number {
			return errors.WithDetailf(
				errors.Mark(errors.Newf("run %d is already recorded", number), errors.ErrLedgerConflict),
				"line %d: %d - %s", e.Line, e.Number, e.URL,
			)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "open ledger")
	}
	defer f.Close()

	prefix, err := needsNewline(l.path)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "%s%d%s%s\n", prefix, number, separator, url); err != nil {
		return errors.Wrap(err, "append to ledger")
	}
	if err := f.Sync(); err != nil {
		return errors.Wrap(err, "sync ledger")
	}

	l.logger.Info(ctx, "Ledger: recorded %d - %s", number, url)
	return nil
}

// read parses the ledger. Blank lines and lines starting with '#' are skipped.
// The last line must always parse. Earlier malformed lines fail only in
// strict mode and are skipped otherwise.
func (l *implLedger) read(strict bool) ([]Entry, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "open ledger")
	}
	defer f.Close()

	type rawLine struct {
		no   int
		text string
	}
	var lines []rawLine

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, rawLine{no: n, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read ledger")
	}

	entries := make([]Entry, 0, len(lines))
	for i, ln := range lines {
		e, err := parseLine(ln.text)
		if err != nil {
			if !strict && i < len(lines)-1 {
				continue
			}
			return nil, errors.WithHint(
				errors.Mark(errors.Wrapf(err, "%s line %d: %q", l.path, ln.no, ln.text), errors.ErrLedgerParse),
				"fix the line to read \"<number> - <url>\" or pass the meeting number explicitly",
			)
		}
		e.Line = ln.no
		entries = append(entries, e)
	}
	return entries, nil
}

func parseLine(text string) (Entry, error) {
	num, url, ok := strings.Cut(text, separator)
	if !ok {
		return Entry{}, errors.New("missing separator")
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return Entry{}, errors.Newf("bad sequence number %q", num)
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return Entry{}, errors.New("missing URL")
	}
	return Entry{Number: n, URL: url}, nil
}

// needsNewline reports a "\n" prefix when a hand-edited file lacks a trailing newline.
func needsNewline(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open ledger")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", errors.Wrap(err, "stat ledger")
	}
	if info.Size() == 0 {
		return "", nil
	}
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, info.Size()-1); err != nil {
		return "", errors.Wrap(err, "read ledger tail")
	}
	if buf[0] == '\n' {
		return "", nil
	}
	return "\n", nil
}

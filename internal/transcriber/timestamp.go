package transcriber

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
)

var headerRe = regexp.MustCompile(`^\[\[(\d+:\d{2}:\d{2})\]\]$`)

// TimestampedLine is one entry of a timestamped transcript.
type TimestampedLine struct {
	Start string
	Text  string
}

// FormatTimestamp renders seconds as HH:MM:SS, truncating fractions. Hours are
// not capped at 24; negative or NaN input renders as 00:00:00.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// WriteTimestamped writes "[[HH:MM:SS]]\n<text>\n\n" per segment. Runs of
// whitespace in the text, newlines included, collapse to one space so each
// body is a single line. Segments with no text are skipped.
func WriteTimestamped(w io.Writer, segments []models.Segment) error {
	bw := bufio.NewWriter(w)
	for _, s := range segments {
		text := strings.Join(strings.Fields(s.Text), " ")
		if text == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, "[[%s]]\n%s\n\n", FormatTimestamp(s.Start), text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseTimestamped reads a transcript written by WriteTimestamped. The first
// non-blank line after a header is always body text, even if it looks like a
// header itself.
func ParseTimestamped(r io.Reader) ([]TimestampedLine, error) {
	var (
		lines      []TimestampedLine
		current    *TimestampedLine
		body       []string
		lineNo     int
		expectBody bool
	)

	flush := func() {
		if current != nil {
			current.Text = strings.Join(body, "\n")
			lines = append(lines, *current)
		}
		current, body = nil, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !expectBody {
			if m := headerRe.FindStringSubmatch(line); m != nil {
				flush()
				current = &TimestampedLine{Start: m[1]}
				expectBody = true
				continue
			}
		}
		expectBody = false
		if current == nil {
			return nil, errors.Mark(errors.Newf("line %d: text before the first timestamp", lineNo), errors.ErrInvalidArgument)
		}
		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read transcript")
	}
	flush()
	return lines, nil
}

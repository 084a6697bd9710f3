package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/time/rate"
)

// CLI prints events to the terminal using pterm.
type CLI struct {
	verbose bool
}

// NewCLI creates a terminal sink. Info events are shown only when verbose.
func NewCLI(verbose bool) *CLI {
	return &CLI{verbose: verbose}
}

func (c *CLI) Emit(e Event) {
	switch e.Kind {
	case KindStarted:
		pterm.Printf("🔄 %s: %s\n", pterm.LightCyan(e.Stage), e.Message)
	case KindProgress:
		pterm.Printf("   %s %s %s\n", pterm.LightCyan(e.Stage), pterm.Green(fmt.Sprintf("%3.0f%%", e.Fraction*100)), e.Message)
	case KindFinished:
		pterm.Success.Printf("%s: %s\n", e.Stage, e.Message)
	case KindFailed:
		pterm.Error.Printf("%s: %s\n", e.Stage, e.Message)
	case KindInfo:
		if c.verbose {
			pterm.Info.Println(e.Message)
		}
	}
}

// JSON writes one JSON object per event.
type JSON struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSON creates a JSON-lines sink on w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{encoder: json.NewEncoder(w)}
}

func (j *JSON) Emit(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.encoder.Encode(e)
}

type throttled struct {
	next      Sink
	sometimes *rate.Sometimes
}

// Throttle forwards KindProgress events at most once per interval.
// All other kinds, and a progress event reaching 100%, always pass through.
func Throttle(next Sink, interval time.Duration) Sink {
	return &throttled{
		next:      OrNop(next),
		sometimes: &rate.Sometimes{Interval: interval},
	}
}

func (t *throttled) Emit(e Event) {
	if e.Kind != KindProgress || e.Fraction >= 1 {
		t.next.Emit(e)
		return
	}
	t.sometimes.Do(func() { t.next.Emit(e) })
}

// Package progress carries structured progress events from the pipeline
// stages to whatever front end is attached.
package progress

import (
	"time"
)

// Kind classifies an Event.
type Kind string

const (
	KindStarted  Kind = "started"
	KindProgress Kind = "progress"
	KindFinished Kind = "finished"
	KindFailed   Kind = "failed"
	KindInfo     Kind = "info"
)

// Event is one progress notification. Fraction is in [0,1] and only
// meaningful for KindProgress.
type Event struct {
	Stage    string    `json:"stage"`
	Kind     Kind      `json:"kind"`
	Fraction float64   `json:"fraction,omitempty"`
	Message  string    `json:"message,omitempty"`
	Time     time.Time `json:"time"`
}

// Sink receives progress events. Implementations must not block for long;
// they are called from inside stage loops.
type Sink interface {
	Emit(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Nop discards every event.
var Nop Sink = SinkFunc(func(Event) {})

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop
	}
	return s
}

type multi []Sink

// Multi fans every event out to all sinks in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Started reports the start of a stage.
func Started(s Sink, stage, message string) {
	emit(s, Event{Stage: stage, Kind: KindStarted, Message: message})
}

// Advance reports fractional progress within a stage.
func Advance(s Sink, stage string, fraction float64, message string) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	emit(s, Event{Stage: stage, Kind: KindProgress, Fraction: fraction, Message: message})
}

// Finished reports successful completion of a stage.
func Finished(s Sink, stage, message string) {
	emit(s, Event{Stage: stage, Kind: KindFinished, Fraction: 1, Message: message})
}

// Failed reports a stage failure.
func Failed(s Sink, stage string, err error) {
	emit(s, Event{Stage: stage, Kind: KindFailed, Message: err.Error()})
}

// Info reports a free-form message.
func Info(s Sink, stage, message string) {
	emit(s, Event{Stage: stage, Kind: KindInfo, Message: message})
}

func emit(s Sink, e Event) {
	if s == nil {
		return
	}
	e.Time = time.Now()
	s.Emit(e)
}

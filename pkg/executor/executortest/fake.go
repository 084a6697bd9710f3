// Package executortest provides a scriptable executor.Executor for tests.
package executortest

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/meeting-flow/pkg/executor"
)

// Call records one command invocation.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// HandlerFunc scripts the result of a command. For Stream the returned output
// is fed line by line to the caller's LineFunc.
type HandlerFunc func(name string, args []string) (string, error)

// Fake is an in-memory executor. Binaries not listed in Paths are reported
// missing by LookPath.
type Fake struct {
	Paths   map[string]string
	Handler HandlerFunc

	mu    sync.Mutex
	calls []Call
}

var _ executor.Executor = (*Fake)(nil)

// New returns a Fake that resolves the given binaries to themselves.
func New(binaries ...string) *Fake {
	f := &Fake{Paths: map[string]string{}}
	for _, b := range binaries {
		f.Paths[b] = "/usr/bin/" + b
	}
	return f
}

func (f *Fake) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.ExecuteInDir(ctx, "", name, args...)
}

func (f *Fake) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	f.record(Call{Dir: dir, Name: name, Args: args})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Handler == nil {
		return "", nil
	}
	return f.Handler(name, args)
}

func (f *Fake) Stream(ctx context.Context, name string, args []string, onLine executor.LineFunc) error {
	f.record(Call{Name: name, Args: args})
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Handler == nil {
		return nil
	}
	out, err := f.Handler(name, args)
	if onLine != nil {
		for _, line := range strings.FieldsFunc(out, func(r rune) bool { return r == '\n' || r == '\r' }) {
			onLine(line)
		}
	}
	return err
}

func (f *Fake) LookPath(name string) (string, error) {
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

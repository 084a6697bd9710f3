package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
)

func TestWatcherHandlesRecordingsSequentially(t *testing.T) {
	dir := t.TempDir()

	var (
		mu       sync.Mutex
		handled  []string
		inFlight int32
		maxSeen  int32
	)
	handler := func(ctx context.Context, path string) error {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxSeen)
			if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		handled = append(handled, filepath.Base(path))
		mu.Unlock()
		return nil
	}

	w, err := New(dir, handler, logger.NewFromZap(zap.NewNop()), 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	// Give the watcher a moment to enter its loop.
	time.Sleep(100 * time.Millisecond)
	for _, name := range []string{"a.mp3", "b.wav", "notes.txt", "c.mkv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 3
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a.mp3", "b.wav", "c.mkv"}, handled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxSeen), "one recording at a time")
}

func TestWatcherCancelsInFlightRecording(t *testing.T) {
	dir := t.TempDir()

	started := make(chan struct{})
	var handlerErr error
	handler := func(ctx context.Context, path string) error {
		close(started)
		<-ctx.Done()
		handlerErr = ctx.Err()
		return handlerErr
	}

	core, logs := observer.New(zap.InfoLevel)
	w, err := New(dir, handler, logger.NewFromZap(zap.New(core)), 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp3"), []byte("data"), 0644))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.ErrorIs(t, handlerErr, context.Canceled, "handler sees the cancelled context")
	assert.Equal(t, 1, logs.FilterMessage("Cancelling the current recording...").Len())
}

func TestWaitStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	start := time.Now()
	require.NoError(t, waitStable(context.Background(), path, 30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	err := waitStable(context.Background(), path+".missing", 30*time.Millisecond)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, waitStable(ctx, path, time.Hour), context.Canceled)
}

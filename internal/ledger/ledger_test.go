package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
)

func newLedger(t *testing.T, content *string) (Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "youtube_links.txt")
	if content != nil {
		require.NoError(t, os.WriteFile(path, []byte(*content), 0644))
	}
	return New(path, logger.NewFromZap(zap.NewNop())), path
}

func ptr(s string) *string { return &s }

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    int
		wantErr error
	}{
		{name: "missing file", content: nil, want: 1},
		{name: "empty file", content: ptr(""), want: 1},
		{name: "only comments and blanks", content: ptr("# ledger\n\n   \n"), want: 1},
		{name: "last entry 7", content: ptr("6 - https://youtu.be/a\n7 - https://youtu.be/b\n"), want: 8},
		{name: "no trailing newline", content: ptr("12 - https://youtu.be/x"), want: 13},
		{name: "trailing blank lines", content: ptr("3 - https://youtu.be/x\n\n\n"), want: 4},
		{name: "malformed last line", content: ptr("1 - https://youtu.be/a\nnot a ledger line\n"), wantErr: errors.ErrLedgerParse},
		{name: "non-numeric number", content: ptr("x - https://youtu.be/a\n"), wantErr: errors.ErrLedgerParse},
		{name: "malformed earlier line is tolerated", content: ptr("oops\n4 - https://youtu.be/a\n"), want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLedger(t, tt.content)
			got, err := l.Next(context.Background())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntriesRejectsAnyMalformedLine(t *testing.T) {
	l, _ := newLedger(t, ptr("oops\n4 - https://youtu.be/a\n"))
	_, err := l.Entries(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLedgerParse))
	assert.Contains(t, err.Error(), "line 1")
}

func TestSequentialRunsNumberOneToN(t *testing.T) {
	l, path := newLedger(t, nil)
	ctx := context.Background()

	const runs = 5
	for i := 0; i < runs; i++ {
		n, err := l.Next(ctx)
		require.NoError(t, err)
		require.NoError(t, l.Append(ctx, n, fmt.Sprintf("https://www.youtube.com/watch?v=id%d", n)))
	}

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, runs)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Number)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1 - https://www.youtube.com/watch?v=id1\n", string(data[:len("1 - https://www.youtube.com/watch?v=id1\n")]))
}

func TestAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate number conflicts", func(t *testing.T) {
		l, _ := newLedger(t, ptr("1 - https://youtu.be/a\n"))
		err := l.Append(ctx, 1, "https://youtu.be/b")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrLedgerConflict))
	})

	t.Run("repairs missing trailing newline", func(t *testing.T) {
		l, path := newLedger(t, ptr("1 - https://youtu.be/a"))
		require.NoError(t, l.Append(ctx, 2, "https://youtu.be/b"))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "1 - https://youtu.be/a\n2 - https://youtu.be/b\n", string(data))
	})

	t.Run("invalid input", func(t *testing.T) {
		l, _ := newLedger(t, nil)
		assert.True(t, errors.Is(l.Append(ctx, 0, "https://youtu.be/a"), errors.ErrInvalidArgument))
		assert.True(t, errors.Is(l.Append(ctx, 1, ""), errors.ErrInvalidArgument))
		assert.True(t, errors.Is(l.Append(ctx, 1, "a\nb"), errors.ErrInvalidArgument))
	})

	t.Run("concurrent appends of distinct numbers", func(t *testing.T) {
		_, path := newLedger(t, nil)
		var wg sync.WaitGroup
		for i := 1; i <= 8; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				l := New(path, logger.NewFromZap(zap.NewNop()))
				assert.NoError(t, l.Append(ctx, n, fmt.Sprintf("https://youtu.be/%d", n)))
			}(i)
		}
		wg.Wait()

		entries, err := New(path, logger.NewFromZap(zap.NewNop())).Entries(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 8)
	})
}

func TestAppendToleratesEarlierMalformedLine(t *testing.T) {
	ctx := context.Background()
	l, path := newLedger(t, ptr("1 - https://youtu.be/a\ntypo line\n2 - https://youtu.be/b\n"))

	n, err := l.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, l.Append(ctx, n, "https://youtu.be/c"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1 - https://youtu.be/a\ntypo line\n2 - https://youtu.be/b\n3 - https://youtu.be/c\n", string(data))

	err = l.Append(ctx, 2, "https://youtu.be/d")
	assert.True(t, errors.Is(err, errors.ErrLedgerConflict))
}

func TestAppendRejectsMalformedLastLine(t *testing.T) {
	l, _ := newLedger(t, ptr("1 - https://youtu.be/a\ntypo line\n"))
	err := l.Append(context.Background(), 2, "https://youtu.be/b")
	assert.True(t, errors.Is(err, errors.ErrLedgerParse))
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		content   *string
		number    int
		wantFound bool
		wantErr   error
	}{
		{name: "missing file", content: nil, number: 1},
		{name: "present", content: ptr("4 - https://youtu.be/a\n5 - https://youtu.be/b\n"), number: 5, wantFound: true},
		{name: "absent", content: ptr("4 - https://youtu.be/a\n"), number: 5},
		{name: "earlier typo skipped", content: ptr("oops\n5 - https://youtu.be/b\n"), number: 5, wantFound: true},
		{name: "malformed last line", content: ptr("5 - https://youtu.be/b\noops\n"), number: 5, wantErr: errors.ErrLedgerParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLedger(t, tt.content)
			e, found, err := l.Lookup(ctx, tt.number)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if found {
				assert.Equal(t, tt.number, e.Number)
			}
		})
	}
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-flow/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process recordings dropped into the inbox",
	Long: `Watch the inbox directory and run the full pipeline for every recording
copied into it, one at a time, numbered from the ledger and dated today.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchOpts struct {
	inbox  string
	settle time.Duration
}

func init() {
	watchCmd.Flags().StringVar(&watchOpts.inbox, "inbox", "", "directory to watch (default from config)")
	watchCmd.Flags().DurationVar(&watchOpts.settle, "settle", 2*time.Second, "how long a file must stop growing before it is processed")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	inbox := watchOpts.inbox
	if inbox == "" {
		inbox = a.cfg.Paths.Inbox
	}
	if err := os.MkdirAll(inbox, 0755); err != nil {
		return errors.Wrap(err, "create inbox")
	}

	orch := a.orchestrator()
	handle := func(ctx context.Context, path string) error {
		_, err := orch.Run(ctx, pipeline.Request{SourcePath: path}, a.sink)
		return err
	}

	w, err := watcher.New(inbox, handle, a.log, watchOpts.settle)
	if err != nil {
		return err
	}
	defer w.Stop()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Watching %s (Ctrl+C to stop)", inbox)
	a.log.Info(ctx, "Results: %s, ledger: %s", a.cfg.Paths.Results, a.cfg.Paths.Ledger)
	a.log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.log.Info(ctx, "Watcher stopped")
	return nil
}

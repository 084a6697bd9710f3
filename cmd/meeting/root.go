package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath string
	verbose bool
	quiet   bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:   "meeting",
	Short: "Transcribe, encode and publish meeting recordings",
	Long: `meeting turns a meeting recording into a transcript, a static-image video
and an unlisted YouTube upload, then records the link in the meetings ledger.

Each stage is also available on its own:
  process        - full pipeline: transcribe, encode, publish, record
  transcribe     - transcript only
  video          - audio + background image -> mp4
  extract-audio  - audio track of a video recording
  prompts        - prompt text for the summarization step
  upload         - publish an existing video
  summarize      - draft highlights with Gemini, render .docx files
  token          - authorize YouTube access once
  ledger         - list published meetings
  watch          - process recordings dropped into the inbox
  doctor         - check tools, credentials and hardware`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: ./config.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "JSON logs and JSON-lines progress on stderr")
}

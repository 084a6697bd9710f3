package main

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio>",
	Short: "Transcribe an audio file",
	Long: `Transcribe an audio file and write <stem>_transcript.json,
<stem>_transcript.txt (timestamped) and <stem>_plain.txt.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

var transcribeOpts struct {
	engine engineFlags
	output string
}

func init() {
	transcribeOpts.engine.register(transcribeCmd)
	transcribeCmd.Flags().StringVarP(&transcribeOpts.output, "output", "o", "", "output directory (default: next to the audio)")

	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	audio := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	outDir := transcribeOpts.output
	if outDir == "" {
		outDir = filepath.Dir(audio)
	}

	out, err := a.transcriber().Transcribe(cmd.Context(), transcriber.Request{
		AudioPath: audio,
		Language:  transcribeOpts.engine.language,
		OutputDir: outDir,
		Engine:    transcribeOpts.engine.engine(),
	}, a.sink)
	if err != nil {
		return err
	}

	if !quiet {
		pterm.Success.Printfln("%d segments, %.0fs, language %s", len(out.Result.Segments), out.Result.Duration, out.Result.Language)
		pterm.Info.Printfln("Transcript: %s", out.TextPath)
		pterm.Info.Printfln("Plain text: %s", out.PlainPath)
		pterm.Info.Printfln("JSON: %s", out.JSONPath)
	}
	return nil
}

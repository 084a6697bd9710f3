package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/advisor"
	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
)

var processCmd = &cobra.Command{
	Use:   "process <recording>",
	Short: "Run the full pipeline for one recording",
	Long: `Transcribe the recording, encode it over the background image, upload it
and append the link to the ledger. Video recordings have their audio
extracted first. The meeting number defaults to the ledger's next number.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

// engineFlags are the transcription knobs shared by process and transcribe.
type engineFlags struct {
	method    string
	model     string
	language  string
	device    string
	batchSize int
	apiKey    string
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.method, "method", "", "transcription method: local or remote (default from config)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "whisper model size (default: advisor recommendation)")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "spoken language (default from config)")
	cmd.Flags().StringVar(&f.device, "device", "", "cpu or cuda (default: detected)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "batch size (default: advisor recommendation)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key for the remote method (default from environment)")
}

func (f *engineFlags) engine() transcriber.EngineConfig {
	return transcriber.EngineConfig{
		Method: f.method,
		Overrides: advisor.Overrides{
			Device:    f.device,
			ModelSize: f.model,
			BatchSize: f.batchSize,
		},
		APIKey: f.apiKey,
	}
}

var processOpts struct {
	engine     engineFlags
	number     int
	date       string
	privacy    string
	background string
	notes      string
}

func init() {
	processOpts.engine.register(processCmd)
	processCmd.Flags().IntVarP(&processOpts.number, "number", "n", 0, "meeting number (default: next in ledger)")
	processCmd.Flags().StringVarP(&processOpts.date, "date", "d", "", "meeting date YYYY-MM-DD (default: today)")
	processCmd.Flags().StringVar(&processOpts.privacy, "privacy", "", "public, private or unlisted (default from config)")
	processCmd.Flags().StringVarP(&processOpts.background, "background", "b", "", "background image (default from config)")
	processCmd.Flags().StringVar(&processOpts.notes, "notes", "", "agenda notes file used in the prompts")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	visibility := models.Visibility(processOpts.privacy)
	if visibility != "" && !visibility.Valid() {
		return errors.Mark(errors.Newf("--privacy must be public, private or unlisted, got %q", processOpts.privacy), errors.ErrInvalidArgument)
	}

	summary, err := a.orchestrator().Run(ctx, pipeline.Request{
		SourcePath: source,
		Number:     processOpts.number,
		Date:       processOpts.date,
		Language:   processOpts.engine.language,
		Background: processOpts.background,
		Visibility: visibility,
		NotesPath:  processOpts.notes,
		Engine:     processOpts.engine.engine(),
	}, a.sink)
	if err != nil {
		return err
	}

	if !quiet {
		pterm.Success.Printfln("Meeting #%d published: %s", summary.Number, summary.URL)
		pterm.Info.Printfln("Output: %s", summary.OutputDir)
	}
	return nil
}

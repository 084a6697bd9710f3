package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/summarizer"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <run-dir>",
	Short: "Draft highlights with Gemini and render .docx files",
	Long: `Send the highlights prompt for the run's transcript to Gemini and write
highlights.md, then render highlights.docx and transcript.docx. An existing
highlights.md is kept unless --force is given.

API keys are read from the variables listed in summarizer.api_key_envs
(default GEMINI_API_KEY); several comma-separated keys are rotated on quota errors.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

var summarizeForce bool

func init() {
	summarizeCmd.Flags().BoolVar(&summarizeForce, "force", false, "regenerate an existing highlights.md")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.summarizer().Summarize(cmd.Context(), args[0], summarizer.Options{Force: summarizeForce})
	if err != nil {
		return err
	}

	if !quiet {
		if res.Generated {
			pterm.Success.Printfln("Highlights drafted: %s", res.HighlightsPath)
		}
		pterm.Info.Printfln("Documents: %s, %s", res.HighlightsDocxPath, res.TranscriptDocxPath)
	}
	return nil
}

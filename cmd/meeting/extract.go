package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract-audio <video>",
	Short: "Extract the audio track of a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var extractOpts struct {
	format string
	output string
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.format, "format", "f", "mp3", "mp3, wav or aac")
	extractCmd.Flags().StringVarP(&extractOpts.output, "output", "o", "", "output file (default: <video stem>.<format>)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.encoder().ExtractAudio(cmd.Context(), args[0], extractOpts.output, extractOpts.format)
	if err != nil {
		return err
	}

	if !quiet {
		pterm.Success.Printfln("Audio: %s", out)
	}
	return nil
}

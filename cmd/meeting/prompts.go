package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts <transcript>",
	Short: "Render prompts for the summarization step",
	Long: `Render prompt text for a transcript and save it as prompt_<type>.txt next
to the transcript. The result of the highlights prompt belongs in
highlights.md in the run directory, where process and upload pick it up.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrompts,
}

var promptsOpts struct {
	kind       string
	notes      string
	date       string
	topic      string
	url        string
	highlights string
	clipboard  bool
}

func init() {
	promptsCmd.Flags().StringVarP(&promptsOpts.kind, "type", "t", "all", "all, "+kindList())
	promptsCmd.Flags().StringVar(&promptsOpts.notes, "notes", "", "agenda notes file")
	promptsCmd.Flags().StringVarP(&promptsOpts.date, "date", "d", "", "meeting date")
	promptsCmd.Flags().StringVar(&promptsOpts.topic, "topic", "", "meeting topic for the metadata prompt")
	promptsCmd.Flags().StringVar(&promptsOpts.url, "url", "", "video URL for the metadata prompt")
	promptsCmd.Flags().StringVar(&promptsOpts.highlights, "highlights", "", "highlights file for the metadata prompt")
	promptsCmd.Flags().BoolVarP(&promptsOpts.clipboard, "clipboard", "c", false, "copy the prompt to the clipboard")

	rootCmd.AddCommand(promptsCmd)
}

func kindList() string {
	names := make([]string, len(prompts.Kinds))
	for i, k := range prompts.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func runPrompts(cmd *cobra.Command, args []string) error {
	transcriptPath := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	kinds := prompts.Kinds
	if promptsOpts.kind != "all" {
		k, err := prompts.ParseKind(promptsOpts.kind)
		if err != nil {
			return err
		}
		kinds = []prompts.Kind{k}
	}

	transcript, err := os.ReadFile(transcriptPath)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "transcript not found: %s", transcriptPath), errors.ErrInputNotFound)
	}
	data := prompts.Data{
		Transcript: string(transcript),
		Date:       promptsOpts.date,
		Topic:      promptsOpts.topic,
		VideoURL:   promptsOpts.url,
	}
	if data.Notes, err = readOptional(promptsOpts.notes); err != nil {
		return err
	}
	if data.Highlights, err = readOptional(promptsOpts.highlights); err != nil {
		return err
	}

	renderer := a.prompts()
	dir := filepath.Dir(transcriptPath)
	var rendered []string
	for _, k := range kinds {
		text, err := renderer.Render(k, data)
		if err != nil {
			return err
		}
		if err := renderer.Save(text, filepath.Join(dir, fmt.Sprintf("prompt_%s.txt", k))); err != nil {
			return err
		}
		rendered = append(rendered, text)
	}

	switch {
	case promptsOpts.clipboard:
		if err := renderer.Copy(strings.Join(rendered, "\n\n")); err != nil {
			return err
		}
		pterm.Success.Println("Prompt copied to clipboard")
	case len(rendered) == 1 && !quiet:
		fmt.Println(rendered[0])
	}
	return nil
}

// readOptional returns the file's content, or "" when path is empty.
func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "file not found: %s", path), errors.ErrInputNotFound)
	}
	return string(data), nil
}

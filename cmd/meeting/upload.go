package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/pipeline"
	"github.com/nguyentantai21042004/meeting-flow/internal/publisher"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <video>",
	Short: "Publish an existing video",
	Long: `Upload a video and write youtube_link.txt next to it. The ledger is not
touched; use process for a recorded run.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var uploadOpts struct {
	title       string
	description string
	tags        []string
	privacy     string
	date        string
	number      int
}

func init() {
	uploadCmd.Flags().StringVar(&uploadOpts.title, "title", "", "video title (default: title template, or the file name)")
	uploadCmd.Flags().StringVar(&uploadOpts.description, "description", "", "video description (default: built from highlights.md)")
	uploadCmd.Flags().StringSliceVar(&uploadOpts.tags, "tags", nil, "comma-separated tags (default from config)")
	uploadCmd.Flags().StringVar(&uploadOpts.privacy, "privacy", "", "public, private or unlisted (default from config)")
	uploadCmd.Flags().StringVarP(&uploadOpts.date, "date", "d", "", "meeting date for the title and description")
	uploadCmd.Flags().IntVarP(&uploadOpts.number, "number", "n", 0, "meeting number for the title template")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	visibility := models.Visibility(uploadOpts.privacy)
	if visibility == "" {
		visibility = models.Visibility(a.cfg.Publish.Visibility)
	}

	title := uploadOpts.title
	switch {
	case title != "":
	case uploadOpts.number > 0 && uploadOpts.date != "":
		if title, err = publisher.Title(a.cfg.Publish.TitleTemplate, publisher.TitleData{Number: uploadOpts.number, Date: uploadOpts.date}); err != nil {
			return errors.Mark(err, errors.ErrInvalidArgument)
		}
	default:
		title = strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	}

	description := uploadOpts.description
	if description == "" {
		highlights, _ := os.ReadFile(filepath.Join(filepath.Dir(videoPath), "highlights.md"))
		description = publisher.Describe(publisher.DescriptionInput{
			Date:       uploadOpts.date,
			Highlights: string(highlights),
			Footer:     a.cfg.Publish.DescriptionFooter,
		})
	}

	link, err := a.publisher().Publish(cmd.Context(), publisher.PublishRequest{
		VideoPath:   videoPath,
		Title:       title,
		Description: description,
		Tags:        uploadOpts.tags,
		Visibility:  visibility,
	}, a.sink)
	if err != nil {
		return err
	}

	if err := pipeline.WriteLinkFile(filepath.Dir(videoPath), link.URL); err != nil {
		a.log.Warn(cmd.Context(), "Failed to write %s: %v", pipeline.LinkFile, err)
	}
	if !quiet {
		pterm.Success.Printfln("Published (%s): %s", link.Visibility, link.URL)
	}
	return nil
}

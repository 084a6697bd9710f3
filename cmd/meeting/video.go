package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/media"
)

var videoCmd = &cobra.Command{
	Use:   "video <audio>",
	Short: "Encode audio over a static background image",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideo,
}

var videoOpts struct {
	background string
	output     string
	resolution string
	fps        int
}

func init() {
	videoCmd.Flags().StringVarP(&videoOpts.background, "background", "b", "", "background image (default from config)")
	videoCmd.Flags().StringVarP(&videoOpts.output, "output", "o", "", "output video (default: <audio stem>.mp4)")
	videoCmd.Flags().StringVarP(&videoOpts.resolution, "resolution", "r", "", "WIDTHxHEIGHT (default from config)")
	videoCmd.Flags().IntVar(&videoOpts.fps, "fps", 0, "frame rate (default from config)")

	rootCmd.AddCommand(videoCmd)
}

func runVideo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if videoOpts.resolution != "" {
		if _, _, err := config.ParseResolution(videoOpts.resolution); err != nil {
			return errors.Mark(errors.Wrap(err, "--resolution"), errors.ErrInvalidArgument)
		}
	}
	background := videoOpts.background
	if background == "" {
		background = a.cfg.Paths.Background
	}

	video, err := a.encoder().Encode(cmd.Context(), media.EncodeRequest{
		AudioPath:      args[0],
		BackgroundPath: background,
		OutputPath:     videoOpts.output,
		Resolution:     videoOpts.resolution,
		FPS:            videoOpts.fps,
	}, a.sink)
	if err != nil {
		return err
	}

	if !quiet {
		pterm.Success.Printfln("Video: %s (%s, %.0fs, %.1f MB)", video.Path, video.Resolution, video.Duration, float64(video.SizeBytes)/(1<<20))
	}
	return nil
}

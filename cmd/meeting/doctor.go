package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/advisor"
	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/summarizer"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external tools, credentials and hardware",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type check struct {
	name   string
	ok     bool
	detail string
	// optional checks only warn
	optional bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var checks []check
	tool := func(name, bin string, optional bool) {
		path, err := a.exec.LookPath(bin)
		detail := path
		if err != nil {
			detail = "not found on PATH"
		}
		checks = append(checks, check{name: name, ok: err == nil, detail: detail, optional: optional})
	}
	file := func(name, path string, optional bool) {
		_, err := os.Stat(path)
		detail := path
		if err != nil {
			detail = path + " (missing)"
		}
		checks = append(checks, check{name: name, ok: err == nil, detail: detail, optional: optional})
	}
	env := func(name string, vars []string, optional bool) {
		n := len(summarizer.KeysFromEnv(vars))
		checks = append(checks, check{name: name, ok: n > 0, detail: fmt.Sprintf("%d key(s) in %v", n, vars), optional: optional})
	}

	tool("ffmpeg", a.cfg.Encoder.BinaryPath, false)
	tool("ffprobe", a.cfg.Encoder.ProbePath, false)
	tool("whisper", a.cfg.Transcription.BinaryPath, a.cfg.Transcription.Method != "local")
	tool("nvidia-smi", "nvidia-smi", true)
	file("background", a.cfg.Paths.Background, false)
	file("client secrets", a.cfg.Publish.ClientSecrets, false)
	file("youtube token", a.cfg.Publish.TokenFile, true)
	env("transcription API", []string{a.cfg.Transcription.Remote.APIKeyEnv}, a.cfg.Transcription.Method != "remote")
	env("gemini API", a.cfg.Summarizer.APIKeyEnvs, true)

	rows := pterm.TableData{{"", "Check", "Detail"}}
	failed := 0
	for _, c := range checks {
		mark := pterm.Green("ok")
		switch {
		case c.ok:
		case c.optional:
			mark = pterm.Yellow("--")
		default:
			mark = pterm.Red("!!")
			failed++
		}
		rows = append(rows, []string{mark, c.name, c.detail})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	profile, hw := a.advisor().Recommend(ctx, advisor.Overrides{})
	gpu := "none"
	if hw.GPU {
		gpu = hw.GPUName
	}
	pterm.Println()
	pterm.Info.Printfln("System: %s/%s, %d CPUs, %.1f GiB RAM available, GPU: %s",
		runtime.GOOS, runtime.GOARCH, hw.LogicalCPUs, float64(hw.AvailableRAM)/(1<<30), gpu)
	pterm.Info.Printfln("Whisper profile: model=%s device=%s compute=%s batch=%d threads=%d beam=%d",
		profile.ModelSize, profile.Device, profile.ComputeType, profile.BatchSize, profile.Threads, profile.BeamSize)

	if failed > 0 {
		return errors.Newf("%d required check(s) failed", failed)
	}
	pterm.Success.Println("All required checks passed")
	return nil
}

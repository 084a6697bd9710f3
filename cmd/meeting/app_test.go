package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/meeting-flow/internal/advisor"
	"github.com/nguyentantai21042004/meeting-flow/internal/config"
	"github.com/nguyentantai21042004/meeting-flow/internal/models"
	"github.com/nguyentantai21042004/meeting-flow/internal/transcriber"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfgPath = ""
		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.Transcription.Method)
		assert.Equal(t, "unlisted", cfg.Publish.Visibility)
	})

	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("transcription:\n  method: openai\n"), 0644))
		cfgPath = path
		defer func() { cfgPath = "" }()

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "remote", cfg.Transcription.Method)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		cfgPath = filepath.Join(t.TempDir(), "nope.yaml")
		defer func() { cfgPath = "" }()

		_, err := loadConfig()
		assert.Error(t, err)
	})
}

func TestEngineFlags(t *testing.T) {
	f := engineFlags{method: "remote", model: "large-v3", device: "cuda", batchSize: 4, apiKey: "k"}

	assert.Equal(t, transcriber.EngineConfig{
		Method:    "remote",
		Overrides: advisor.Overrides{Device: "cuda", ModelSize: "large-v3", BatchSize: 4},
		APIKey:    "k",
	}, f.engine())
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"process", "transcribe", "video", "extract-audio", "prompts", "upload", "summarize", "token", "ledger", "watch", "doctor"}

	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	assert.Subset(t, got, want)
}

func TestReadOptional(t *testing.T) {
	text, err := readOptional("")
	require.NoError(t, err)
	assert.Empty(t, text)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("agenda"), 0644))
	text, err = readOptional(path)
	require.NoError(t, err)
	assert.Equal(t, "agenda", text)

	_, err = readOptional(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunLoggerTeesIntoOutputDir(t *testing.T) {
	dir := t.TempDir()
	a := &app{cfg: config.Default()}

	log, err := a.runLogger(models.Run{SourcePath: "/rec/spotkanie.mp3", OutputDir: dir})
	require.NoError(t, err)
	log.Info(context.Background(), "hello %s", "run")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "spotkanie_log.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello run")
}

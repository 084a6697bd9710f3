package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

// Config is the full application configuration, loaded once and handed to
// each adapter section by section.
type Config struct {
	Paths         PathsConfig         `yaml:"paths"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Encoder       EncoderConfig       `yaml:"encoder"`
	Publish       PublishConfig       `yaml:"publish"`
	Summarizer    SummarizerConfig    `yaml:"summarizer"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type PathsConfig struct {
	Results    string `yaml:"results"`
	Ledger     string `yaml:"ledger"`
	Background string `yaml:"background"`
	Templates  string `yaml:"templates"`
	Inbox      string `yaml:"inbox"`
}

type TranscriptionConfig struct {
	Method         string       `yaml:"method"`
	Language       string       `yaml:"language"`
	Model          string       `yaml:"model"`
	Device         string       `yaml:"device"`
	BinaryPath     string       `yaml:"binary_path"`
	BeamSize       int          `yaml:"beam_size"`
	VADMinSilentMS int          `yaml:"vad_min_silence_ms"`
	Remote         RemoteConfig `yaml:"remote"`
}

type RemoteConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
}

type EncoderConfig struct {
	BinaryPath        string        `yaml:"binary_path"`
	ProbePath         string        `yaml:"probe_path"`
	Resolution        string        `yaml:"resolution"`
	FPS               int           `yaml:"fps"`
	AudioBitrate      string        `yaml:"audio_bitrate"`
	VideoBitrate      string        `yaml:"video_bitrate"`
	DurationTolerance time.Duration `yaml:"duration_tolerance"`
}

type PublishConfig struct {
	ClientSecrets     string   `yaml:"client_secrets"`
	TokenFile         string   `yaml:"token_file"`
	RedirectPort      int      `yaml:"redirect_port"`
	Interactive       bool     `yaml:"interactive"`
	Visibility        string   `yaml:"visibility"`
	CategoryID        string   `yaml:"category_id"`
	Tags              []string `yaml:"tags"`
	ChunkSizeMB       int      `yaml:"chunk_size_mb"`
	TitleTemplate     string   `yaml:"title_template"`
	DescriptionFooter string   `yaml:"description_footer"`
}

type SummarizerConfig struct {
	Model      string   `yaml:"model"`
	APIKeyEnvs []string `yaml:"api_key_envs"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Results:    "results",
			Ledger:     "youtube_links.txt",
			Background: "resources/templates/background.png",
			Templates:  "resources/templates",
			Inbox:      "data/inbox",
		},
		Transcription: TranscriptionConfig{
			Method:         "local",
			Language:       "pl",
			BinaryPath:     "whisper-ctranslate2",
			BeamSize:       5,
			VADMinSilentMS: 500,
			Remote: RemoteConfig{
				Endpoint:  "https://api.openai.com/v1/audio/transcriptions",
				Model:     "whisper-1",
				APIKeyEnv: "OPENAI_API_KEY",
				Timeout:   30 * time.Minute,
			},
		},
		Encoder: EncoderConfig{
			BinaryPath:        "ffmpeg",
			ProbePath:         "ffprobe",
			Resolution:        "1920x1080",
			FPS:               30,
			AudioBitrate:      "192k",
			VideoBitrate:      "1M",
			DurationTolerance: 2 * time.Second,
		},
		Publish: PublishConfig{
			ClientSecrets:     "credentials/client_secrets.json",
			TokenFile:         "credentials/youtube_token.json",
			RedirectPort:      8888,
			Interactive:       true,
			Visibility:        "unlisted",
			CategoryID:        "22",
			Tags:              []string{"SKNWPL", "koło naukowe", "spotkanie"},
			ChunkSizeMB:       10,
			TitleTemplate:     "Spotkanie SKNWPL #{{.Number}} - {{.Date}}",
			DescriptionFooter: "Automatycznie wygenerowane przez SKNWPL Meetings System",
		},
		Summarizer: SummarizerConfig{
			Model:      "gemini-2.5-flash",
			APIKeyEnvs: []string{"GEMINI_API_KEY"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Paths.Results == "" {
		return errors.New("paths.results is required")
	}
	if c.Paths.Ledger == "" {
		return errors.New("paths.ledger is required")
	}

	switch c.Transcription.Method {
	case "local", "remote":
	case "openai":
		c.Transcription.Method = "remote"
	default:
		return errors.Newf("transcription.method must be local or remote, got %q", c.Transcription.Method)
	}
	switch c.Transcription.Device {
	case "", "cpu", "cuda":
	default:
		return errors.Newf("transcription.device must be cpu or cuda, got %q", c.Transcription.Device)
	}
	if c.Transcription.Language == "" {
		return errors.New("transcription.language is required")
	}

	if _, _, err := ParseResolution(c.Encoder.Resolution); err != nil {
		return errors.Wrap(err, "encoder.resolution")
	}
	if c.Encoder.FPS <= 0 {
		return errors.Newf("encoder.fps must be positive, got %d", c.Encoder.FPS)
	}

	switch c.Publish.Visibility {
	case "":
		c.Publish.Visibility = "unlisted"
	case "public", "private", "unlisted":
	default:
		return errors.Newf("publish.visibility must be public, private or unlisted, got %q", c.Publish.Visibility)
	}

	if c.Transcription.BinaryPath == "" {
		c.Transcription.BinaryPath = "whisper-ctranslate2"
	}
	if c.Transcription.BeamSize == 0 {
		c.Transcription.BeamSize = 5
	}
	if c.Transcription.Remote.APIKeyEnv == "" {
		c.Transcription.Remote.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Encoder.BinaryPath == "" {
		c.Encoder.BinaryPath = "ffmpeg"
	}
	if c.Encoder.ProbePath == "" {
		c.Encoder.ProbePath = "ffprobe"
	}
	if c.Publish.RedirectPort == 0 {
		c.Publish.RedirectPort = 8888
	}
	if c.Publish.ChunkSizeMB <= 0 {
		c.Publish.ChunkSizeMB = 10
	}
	if c.Publish.CategoryID == "" {
		c.Publish.CategoryID = "22"
	}
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = "gemini-2.5-flash"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// ParseResolution splits "WIDTHxHEIGHT" into its positive integer parts.
func ParseResolution(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, errors.Newf("want WIDTHxHEIGHT, got %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, errors.Newf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, errors.Newf("invalid height in %q", s)
	}
	return width, height, nil
}

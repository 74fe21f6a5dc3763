// Package config loads the application's settings from an optional YAML
// file, then applies environment overrides. A .env file in the working
// directory is folded into the environment first, so API tokens never need
// to live in the config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppName     string          `yaml:"app_name"`
	Environment string          `yaml:"environment"`
	LogLevel    string          `yaml:"log_level"`
	Providers   ProvidersConfig `yaml:"providers"`
	Pipeline    PipelineConfig  `yaml:"pipeline"`
	Voices      VoicesConfig    `yaml:"voices"`
	Playback    PlaybackConfig  `yaml:"playback"`
	Recording   RecordingConfig `yaml:"recording"`
}

// ProvidersConfig selects a registered plugin per pipeline capability.
// Names must match the keys the plugins register under. An empty animator
// disables the video stage; playback then uses the still portrait.
type ProvidersConfig struct {
	Transcriber string `yaml:"transcriber"`
	Composer    string `yaml:"composer"`
	Illustrator string `yaml:"illustrator"`
	Animator    string `yaml:"animator"`
	Synthesizer string `yaml:"synthesizer"`

	ReplicateToken string `yaml:"replicate_token"`
	OpenAIKey      string `yaml:"openai_key"`
}

type PipelineConfig struct {
	CanvasSize  int         `yaml:"canvas_size"`
	AudioCapMS  int         `yaml:"audio_cap_ms"`
	ArtifactDir string      `yaml:"artifact_dir"`
	Retry       RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int `yaml:"max_attempts"`
	BaseWaitMS      int `yaml:"base_wait_ms"`
	JitterSpanMS    int `yaml:"jitter_span_ms"`
	RateLimitWaitMS int `yaml:"rate_limit_wait_ms"`
	SafetyMarginMS  int `yaml:"safety_margin_ms"`
	FailureWaitMS   int `yaml:"failure_wait_ms"`
}

// VoicesConfig holds the speech-synthesis voice references. For XTTS these
// are speaker WAV URLs; for OpenAI TTS they are voice names.
type VoicesConfig struct {
	Male          string `yaml:"male"`
	Female        string `yaml:"female"`
	DefaultGender string `yaml:"default_gender"`
}

type PlaybackConfig struct {
	Volume float64 `yaml:"volume"`
}

type RecordingConfig struct {
	MinDurationMS int `yaml:"min_duration_ms"`
}

func Default() Config {
	return Config{
		AppName:     "talking-history",
		Environment: "development",
		LogLevel:    "info",
		Providers: ProvidersConfig{
			Transcriber: "whisper",
			Composer:    "gpt-5-mini",
			Illustrator: "qwen-image",
			Animator:    "",
			Synthesizer: "xtts-v2",
		},
		Pipeline: PipelineConfig{
			CanvasSize:  512,
			AudioCapMS:  29000,
			ArtifactDir: os.TempDir(),
			Retry: RetryConfig{
				MaxAttempts:     3,
				BaseWaitMS:      12000,
				JitterSpanMS:    4000,
				RateLimitWaitMS: 20000,
				SafetyMarginMS:  5000,
				FailureWaitMS:   8000,
			},
		},
		Voices: VoicesConfig{
			DefaultGender: "male",
		},
		Playback: PlaybackConfig{
			Volume: 1.0,
		},
		Recording: RecordingConfig{
			MinDurationMS: 300,
		},
	}
}

// Load reads the optional config file at path, folds a .env file into the
// environment, applies environment overrides and validates the result. An
// empty path means defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()

	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.AppName, "TH_APP_NAME")
	overrideString(&cfg.Environment, "TH_ENVIRONMENT")
	overrideString(&cfg.LogLevel, "TH_LOG_LEVEL")
	overrideString(&cfg.Providers.Transcriber, "TH_PROVIDER_TRANSCRIBER")
	overrideString(&cfg.Providers.Composer, "TH_PROVIDER_COMPOSER")
	overrideString(&cfg.Providers.Illustrator, "TH_PROVIDER_ILLUSTRATOR")
	overrideString(&cfg.Providers.Animator, "TH_PROVIDER_ANIMATOR")
	overrideString(&cfg.Providers.Synthesizer, "TH_PROVIDER_SYNTHESIZER")
	overrideString(&cfg.Providers.ReplicateToken, "REPLICATE_API_TOKEN")
	overrideString(&cfg.Providers.OpenAIKey, "OPENAI_API_KEY")
	overrideInt(&cfg.Pipeline.CanvasSize, "TH_PIPELINE_CANVAS_SIZE")
	overrideInt(&cfg.Pipeline.AudioCapMS, "TH_PIPELINE_AUDIO_CAP_MS")
	overrideString(&cfg.Pipeline.ArtifactDir, "TH_PIPELINE_ARTIFACT_DIR")
	overrideInt(&cfg.Pipeline.Retry.MaxAttempts, "TH_RETRY_MAX_ATTEMPTS")
	overrideInt(&cfg.Pipeline.Retry.BaseWaitMS, "TH_RETRY_BASE_WAIT_MS")
	overrideInt(&cfg.Pipeline.Retry.JitterSpanMS, "TH_RETRY_JITTER_SPAN_MS")
	overrideInt(&cfg.Pipeline.Retry.RateLimitWaitMS, "TH_RETRY_RATE_LIMIT_WAIT_MS")
	overrideInt(&cfg.Pipeline.Retry.SafetyMarginMS, "TH_RETRY_SAFETY_MARGIN_MS")
	overrideInt(&cfg.Pipeline.Retry.FailureWaitMS, "TH_RETRY_FAILURE_WAIT_MS")
	overrideString(&cfg.Voices.Male, "TH_VOICE_MALE")
	overrideString(&cfg.Voices.Female, "TH_VOICE_FEMALE")
	overrideString(&cfg.Voices.DefaultGender, "TH_VOICE_DEFAULT_GENDER")
	overrideFloat(&cfg.Playback.Volume, "TH_PLAYBACK_VOLUME")
	overrideInt(&cfg.Recording.MinDurationMS, "TH_RECORDING_MIN_DURATION_MS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.AppName == "" {
		return errors.New("app_name must not be empty")
	}
	if cfg.Providers.Transcriber == "" {
		return errors.New("providers.transcriber must not be empty")
	}
	if cfg.Providers.Composer == "" {
		return errors.New("providers.composer must not be empty")
	}
	if cfg.Providers.Illustrator == "" {
		return errors.New("providers.illustrator must not be empty")
	}
	if cfg.Providers.Synthesizer == "" {
		return errors.New("providers.synthesizer must not be empty")
	}
	if cfg.Pipeline.CanvasSize <= 0 {
		return errors.New("pipeline.canvas_size must be positive")
	}
	if cfg.Pipeline.AudioCapMS <= 0 {
		return errors.New("pipeline.audio_cap_ms must be positive")
	}
	if cfg.Pipeline.Retry.MaxAttempts <= 0 {
		return errors.New("pipeline.retry.max_attempts must be >= 1")
	}
	switch cfg.Voices.DefaultGender {
	case "male", "female":
	default:
		return errors.New("voices.default_gender must be one of male|female")
	}
	if cfg.Playback.Volume < 0 || cfg.Playback.Volume > 1 {
		return errors.New("playback.volume must be between 0 and 1")
	}
	if cfg.Recording.MinDurationMS < 0 {
		return errors.New("recording.min_duration_ms must be >= 0")
	}
	return nil
}

// AudioCap converts the configured cap to a duration.
func (p PipelineConfig) AudioCap() time.Duration {
	return time.Duration(p.AudioCapMS) * time.Millisecond
}

// MinDuration converts the configured floor to a duration.
func (r RecordingConfig) MinDuration() time.Duration {
	return time.Duration(r.MinDurationMS) * time.Millisecond
}

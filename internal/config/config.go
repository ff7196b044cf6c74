// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrGeminiAPIKeyRequired is returned when GEMINI_API_KEY is not set.
	ErrGeminiAPIKeyRequired = errors.New("config: GEMINI_API_KEY is required")
)

// Config holds all configuration for the application.
type Config struct {
	// Gemini settings
	GeminiAPIKey string `env:"GEMINI_API_KEY, required" json:"-"` // Masked in JSON
	TextModel    string `env:"GEMINI_TEXT_MODEL, default=gemini-2.5-flash" json:"text_model"`
	ImageModel   string `env:"GEMINI_IMAGE_MODEL, default=gemini-2.5-flash-image" json:"image_model"`
	VideoModel   string `env:"GEMINI_VIDEO_MODEL, default=veo-3.1-generate-preview" json:"video_model"`

	// Content plan and output locations
	ContentPlanPath string `env:"CONTENT_PLAN_PATH, default=content_plan.json" json:"content_plan_path"`
	OutputDir       string `env:"OUTPUT_DIR, default=output" json:"output_dir"`

	// Video generation polling
	PollInterval time.Duration `env:"VIDEO_POLL_INTERVAL, default=10s" json:"poll_interval"`
	PollTimeout  time.Duration `env:"VIDEO_POLL_TIMEOUT, default=10m" json:"poll_timeout"`

	// Rendering settings
	FrameRate int `env:"RENDER_FRAME_RATE, default=24" json:"frame_rate"`

	// YouTube upload settings
	YouTubeClientID     string `env:"YOUTUBE_CLIENT_ID" json:"-"`
	YouTubeClientSecret string `env:"YOUTUBE_CLIENT_SECRET" json:"-"`
	YouTubeRefreshToken string `env:"YOUTUBE_REFRESH_TOKEN" json:"-"`
	ChannelName         string `env:"CHANNEL_NAME, default=AI for Developers" json:"channel_name"`

	// Optional S3 archive settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 archive configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// UploadEnabled returns true if YouTube OAuth credentials are provided.
func (c *Config) UploadEnabled() bool {
	return c.YouTubeClientID != "" && c.YouTubeClientSecret != "" && c.YouTubeRefreshToken != ""
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "GEMINI_API_KEY") {
			return nil, ErrGeminiAPIKeyRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrGeminiAPIKeyRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{TextModel: %s, ImageModel: %s, VideoModel: %s, ContentPlanPath: %s, OutputDir: %s, PollInterval: %s, PollTimeout: %s, FrameRate: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.TextModel,
		c.ImageModel,
		c.VideoModel,
		c.ContentPlanPath,
		c.OutputDir,
		c.PollInterval,
		c.PollTimeout,
		c.FrameRate,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

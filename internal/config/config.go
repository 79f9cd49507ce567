// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidMaxConcurrentFiles is returned when VOICECUT_MAX_CONCURRENT_FILES is below 1.
	ErrInvalidMaxConcurrentFiles = errors.New("config: VOICECUT_MAX_CONCURRENT_FILES must be at least 1")
	// ErrS3RegionRequired is returned when a bucket is set without a region.
	ErrS3RegionRequired = errors.New("config: VOICECUT_S3_REGION is required when VOICECUT_S3_BUCKET is set")
)

// Config holds environment configuration for voicecut. Per-run split
// parameters come from command-line flags instead.
type Config struct {
	// Backend settings
	FFmpegPath  string `env:"VOICECUT_FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath string `env:"VOICECUT_FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`

	// Processing settings
	MaxConcurrentFiles int `env:"VOICECUT_MAX_CONCURRENT_FILES, default=1" json:"max_concurrent_files"`

	// Optional S3 settings
	S3Bucket           string `env:"VOICECUT_S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"VOICECUT_S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"VOICECUT_S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3Prefix           string `env:"VOICECUT_S3_PREFIX" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=warn" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if an S3 bucket is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	return load(envconfig.OsLookuper())
}

func load(lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if c.MaxConcurrentFiles < 1 {
		return ErrInvalidMaxConcurrentFiles
	}
	if c.S3Bucket != "" && c.S3Region == "" {
		return ErrS3RegionRequired
	}
	return nil
}

// NewLogger creates a structured logger writing to w.
// When LogFormat is "json", it outputs JSON logs.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{FFmpegPath: %s, FFprobePath: %s, MaxConcurrentFiles: %d, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, S3Prefix: %s, LogFormat: %s, LogLevel: %s}",
		c.FFmpegPath,
		c.FFprobePath,
		c.MaxConcurrentFiles,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		c.S3Prefix,
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

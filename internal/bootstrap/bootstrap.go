// Package bootstrap provides dependency initialization for voicecut.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/voicecut/internal/audio"
	"github.com/maauso/voicecut/internal/config"
	"github.com/maauso/voicecut/internal/splitter"
	"github.com/maauso/voicecut/internal/storage"
)

// Dependencies holds all initialized dependencies for the CLI.
type Dependencies struct {
	Splitter *splitter.Service
}

// NewDependencies creates and initializes all dependencies for the application.
// maxConcurrentFiles overrides the configured value when positive.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger, maxConcurrentFiles int) (*Dependencies, error) {
	publisher, err := initPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	backend := audio.NewFFmpegBackend(cfg.FFmpegPath, cfg.FFprobePath)

	if maxConcurrentFiles <= 0 {
		maxConcurrentFiles = cfg.MaxConcurrentFiles
	}

	svc := splitter.NewService(
		backend,
		logger,
		splitter.WithPublisher(publisher),
		splitter.WithMaxConcurrentFiles(maxConcurrentFiles),
	)

	return &Dependencies{
		Splitter: svc,
	}, nil
}

// initPublisher creates the appropriate publisher based on configuration.
func initPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Publisher, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			KeyPrefix:       cfg.S3Prefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		publisher, err := storage.NewS3Publisher(ctx, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 publisher: %w", err)
		}
		logger.Info("S3 publishing configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return publisher, nil
	}

	logger.Debug("segments kept on local disk")
	return storage.NewLocalPublisher(), nil
}

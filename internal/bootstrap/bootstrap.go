// Package bootstrap provides dependency initialization for the application.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tutorlane/videoforge/internal/config"
	"github.com/tutorlane/videoforge/internal/gemini"
	"github.com/tutorlane/videoforge/internal/media"
	"github.com/tutorlane/videoforge/internal/pipeline"
	"github.com/tutorlane/videoforge/internal/plan"
	"github.com/tutorlane/videoforge/internal/runner"
	"github.com/tutorlane/videoforge/internal/storage"
	"github.com/tutorlane/videoforge/internal/thumb"
	"github.com/tutorlane/videoforge/internal/upload"
)

// Dependencies holds all initialized dependencies for the CLI.
type Dependencies struct {
	Store  *plan.Store
	Runner *runner.Runner
}

// NewDependencies creates and wires all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	processor, err := media.NewFFmpegProcessor("", cfg.FrameRate)
	if err != nil {
		return nil, fmt.Errorf("create media processor: %w", err)
	}
	if err := processor.Check(); err != nil {
		return nil, err
	}

	gen, err := gemini.NewClient(ctx, cfg.GeminiAPIKey,
		gemini.WithModels(cfg.TextModel, cfg.ImageModel, cfg.VideoModel),
		gemini.WithPollInterval(cfg.PollInterval),
		gemini.WithPollTimeout(cfg.PollTimeout),
		gemini.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	thumbnailer, err := thumb.NewGenerator()
	if err != nil {
		return nil, fmt.Errorf("create thumbnail generator: %w", err)
	}

	pipe := pipeline.New(gen, processor, cfg.OutputDir,
		pipeline.WithLogger(logger),
		pipeline.WithChannelName(cfg.ChannelName),
		pipeline.WithThumbnailer(thumbnailer),
	)

	store := plan.NewStore(cfg.ContentPlanPath,
		plan.WithOutputDir(cfg.OutputDir),
		plan.WithLogger(logger),
	)

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithChannelName(cfg.ChannelName),
	}

	archiver, err := initArchiver(cfg, logger)
	if err != nil {
		return nil, err
	}
	runnerOpts = append(runnerOpts, runner.WithArchiver(archiver))

	if cfg.UploadEnabled() {
		publisher, err := upload.NewYouTubeUploader(ctx, upload.Credentials{
			ClientID:     cfg.YouTubeClientID,
			ClientSecret: cfg.YouTubeClientSecret,
			RefreshToken: cfg.YouTubeRefreshToken,
		}, upload.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create youtube uploader: %w", err)
		}
		logger.Info("youtube upload enabled", slog.String("channel", cfg.ChannelName))
		runnerOpts = append(runnerOpts, runner.WithPublisher(publisher))
	} else {
		logger.Info("youtube upload disabled: credentials not configured")
	}

	return &Dependencies{
		Store:  store,
		Runner: runner.New(store, pipe, runnerOpts...),
	}, nil
}

// initArchiver creates the appropriate archive backend based on configuration.
func initArchiver(cfg *config.Config, logger *slog.Logger) (storage.Archiver, error) {
	if cfg.S3Enabled() {
		archiver, err := storage.NewS3Archiver(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 archiver: %w", err)
		}
		logger.Info("S3 archive configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return archiver, nil
	}

	archiver, err := storage.NewLocalArchiver("")
	if err != nil {
		return nil, fmt.Errorf("create local archiver: %w", err)
	}
	logger.Info("local archive configured", slog.String("dir", archiver.Dir()))
	return archiver, nil
}

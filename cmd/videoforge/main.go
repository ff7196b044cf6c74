// Package main provides the entry point for the videoforge CLI.
//
// Usage:
//
//	videoforge            produce the next pending lesson
//	videoforge batch [n]  produce up to n pending lessons (default 3)
//	videoforge status     print the content plan summary
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tutorlane/videoforge/internal/bootstrap"
	"github.com/tutorlane/videoforge/internal/config"
	"github.com/tutorlane/videoforge/internal/plan"
	"github.com/tutorlane/videoforge/internal/runner"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Load a .env file when present; real environment takes precedence
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting videoforge",
		slog.String("content_plan", cfg.ContentPlanPath),
		slog.String("output_dir", cfg.OutputDir),
		slog.String("text_model", cfg.TextModel),
		slog.String("video_model", cfg.VideoModel),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
		slog.Bool("upload_enabled", cfg.UploadEnabled()),
	)

	// Cancel in-flight generation on Ctrl-C or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	if err := deps.Runner.LogSummary(); err != nil {
		return err
	}

	switch command(args) {
	case "status":
		return nil
	case "batch":
		n, err := batchSize(args)
		if err != nil {
			return err
		}
		result, err := deps.Runner.RunBatch(ctx, n)
		if err != nil {
			return err
		}
		logger.Info("batch run done",
			slog.Int("completed", result.Completed),
			slog.Int("failed", result.Failed),
		)
		if result.Failed > 0 {
			return fmt.Errorf("%d lesson(s) failed", result.Failed)
		}
		return nil
	default:
		st, err := deps.Runner.RunNext(ctx)
		if errors.Is(err, plan.ErrNoPendingLesson) {
			logger.Info("no pending lessons in content plan")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("lesson produced",
			slog.String("lesson", st.Lesson.Title),
			slog.String("video", st.FinalVideoPath),
		)
		return nil
	}
}

func command(args []string) string {
	if len(args) == 0 {
		return "next"
	}
	return args[0]
}

func batchSize(args []string) (int, error) {
	if len(args) < 2 {
		return runner.DefaultBatchSize, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid batch size %q", args[1])
	}
	return n, nil
}

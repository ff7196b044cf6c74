// Package runner orchestrates pipeline runs over the content plan: it picks
// pending lessons, executes the pipeline, records outcomes, and hands
// finished videos to archiving and upload.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/tutorlane/videoforge/internal/pipeline"
	"github.com/tutorlane/videoforge/internal/plan"
	"github.com/tutorlane/videoforge/internal/storage"
	"github.com/tutorlane/videoforge/internal/upload"
)

// DefaultBatchSize is how many lessons a batch run processes when no count
// is given.
const DefaultBatchSize = 3

// PlanStore is the slice of the content plan store the runner needs.
type PlanStore interface {
	NextPending() (*plan.Lesson, error)
	SetStatus(key string, status plan.Status, videoPath string) error
	Summarize() (*plan.Summary, error)
}

// Pipeline produces one video from one lesson.
type Pipeline interface {
	Run(ctx context.Context, lesson plan.Lesson) (*pipeline.State, error)
}

// BatchResult reports the outcome of a batch run.
type BatchResult struct {
	Completed int
	Failed    int
}

// Runner coordinates lesson selection, production, and post-processing.
type Runner struct {
	store       PlanStore
	pipe        Pipeline
	publisher   upload.Publisher
	archiver    storage.Archiver
	channelName string
	privacy     string
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithPublisher enables YouTube upload of finished videos.
func WithPublisher(p upload.Publisher) Option {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithArchiver enables archiving of finished videos.
func WithArchiver(a storage.Archiver) Option {
	return func(r *Runner) {
		r.archiver = a
	}
}

// WithChannelName sets the channel name used in upload metadata fallbacks.
func WithChannelName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.channelName = name
		}
	}
}

// WithPrivacy sets the privacy status for uploaded videos.
func WithPrivacy(privacy string) Option {
	return func(r *Runner) {
		if privacy != "" {
			r.privacy = privacy
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner.
func New(store PlanStore, pipe Pipeline, opts ...Option) *Runner {
	r := &Runner{
		store:       store,
		pipe:        pipe,
		channelName: "AI for Developers",
		privacy:     "private",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LogSummary logs the current state of the content plan. It is called at
// startup so every invocation shows where the series stands.
func (r *Runner) LogSummary() error {
	summary, err := r.store.Summarize()
	if err != nil {
		return fmt.Errorf("summarizing content plan: %w", err)
	}
	r.logger.Info("content plan status",
		"total", summary.TotalLessons,
		"completed", summary.Completed,
		"pending", summary.Pending,
		"failed", summary.Failed,
		"output_directories", len(summary.OutputDirectories))
	return nil
}

// RunNext produces the next pending lesson. It returns
// plan.ErrNoPendingLesson when the plan is exhausted. The lesson is marked
// completed only after a successful upload (or when upload is not
// configured); a production or upload failure marks it failed. Archiving is
// best effort and never fails the lesson.
func (r *Runner) RunNext(ctx context.Context) (*pipeline.State, error) {
	lesson, err := r.store.NextPending()
	if err != nil {
		return nil, err
	}

	st, runErr := r.pipe.Run(ctx, *lesson)
	if runErr != nil {
		r.logger.Error("lesson production failed",
			"lesson", lesson.Title,
			"error", runErr)
		r.setStatus(lesson, plan.StatusFailed, "")
		return st, runErr
	}

	r.archive(ctx, st)

	if r.publisher != nil {
		if err := r.publish(ctx, st); err != nil {
			r.logger.Error("youtube upload failed",
				"lesson", lesson.Title,
				"error", err)
			r.setStatus(lesson, plan.StatusFailed, st.FinalVideoPath)
			return st, fmt.Errorf("uploading video: %w", err)
		}
	}

	if err := r.store.SetStatus(lesson.ID, plan.StatusCompleted, st.FinalVideoPath); err != nil {
		return st, fmt.Errorf("recording completed status: %w", err)
	}
	return st, nil
}

func (r *Runner) setStatus(lesson *plan.Lesson, status plan.Status, videoPath string) {
	if err := r.store.SetStatus(lesson.ID, status, videoPath); err != nil {
		r.logger.Error("recording lesson status",
			"lesson", lesson.Title,
			"status", status,
			"error", err)
	}
}

// RunBatch produces up to n pending lessons, stopping early when the plan is
// exhausted or the context is cancelled. A failed lesson does not stop the
// batch; the next pending lesson is attempted.
func (r *Runner) RunBatch(ctx context.Context, n int) (*BatchResult, error) {
	if n <= 0 {
		n = DefaultBatchSize
	}

	result := &BatchResult{}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, err := r.RunNext(ctx)
		switch {
		case errors.Is(err, plan.ErrNoPendingLesson):
			r.logger.Info("content plan exhausted",
				"completed", result.Completed,
				"failed", result.Failed)
			return result, nil
		case err != nil:
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
		default:
			result.Completed++
		}
	}

	r.logger.Info("batch finished",
		"completed", result.Completed,
		"failed", result.Failed)
	return result, nil
}

// archive copies the finished video to durable storage. Best effort: the
// video already exists locally.
func (r *Runner) archive(ctx context.Context, st *pipeline.State) {
	if r.archiver == nil {
		return
	}
	key := path.Join("videos", st.RunID, path.Base(st.FinalVideoPath))
	location, err := r.archiver.Archive(ctx, key, st.FinalVideoPath)
	if err != nil {
		r.logger.Warn("archiving final video failed", "run_id", st.RunID, "error", err)
		return
	}
	r.logger.Info("final video archived", "location", location)
}

func (r *Runner) publish(ctx context.Context, st *pipeline.State) error {
	req := upload.NewRequest(st, r.channelName, r.privacy)
	result, err := r.publisher.Upload(ctx, req)
	if err != nil {
		return err
	}
	r.logger.Info("video published", "video_id", result.VideoID, "url", result.URL)
	return nil
}

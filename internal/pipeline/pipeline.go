package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/tutorlane/videoforge/internal/gemini"
	"github.com/tutorlane/videoforge/internal/plan"
)

var (
	// ErrMissingDependency is returned when a stage runs without the
	// output of an earlier stage it depends on.
	ErrMissingDependency = errors.New("missing stage dependency")

	// ErrNoSegments is returned by the render stage when asset generation
	// produced no clips at all, so there is nothing to join.
	ErrNoSegments = errors.New("no video segments to join")
)

// Renderer joins generated clips into the final video and probes durations.
type Renderer interface {
	Concat(ctx context.Context, segments []string, dest string) error
	Duration(ctx context.Context, path string) (float64, error)
}

// Thumbnailer produces a locally rendered thumbnail when the generative
// path is unavailable.
type Thumbnailer interface {
	Render(text, dest string) error
}

// Pipeline runs the full lesson-to-video production sequence for one lesson.
type Pipeline struct {
	gen         gemini.Client
	renderer    Renderer
	thumb       Thumbnailer
	outputBase  string
	channelName string
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage progress and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithChannelName sets the channel name woven into metadata prompts.
func WithChannelName(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.channelName = name
		}
	}
}

// WithThumbnailer sets the local fallback thumbnail renderer.
func WithThumbnailer(t Thumbnailer) Option {
	return func(p *Pipeline) {
		p.thumb = t
	}
}

// WithClock overrides the time source used for run identifiers.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Pipeline writing run artifacts under outputBase.
func New(gen gemini.Client, renderer Renderer, outputBase string, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:         gen,
		renderer:    renderer,
		outputBase:  outputBase,
		channelName: "AI for Developers",
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes all eight stages for the given lesson. The returned state
// carries every intermediate result; on error it reflects progress up to
// the failing stage. Thumbnail generation is the only non-fatal stage.
func (p *Pipeline) Run(ctx context.Context, lesson plan.Lesson) (*State, error) {
	st, err := newState(lesson, p.outputBase, p.now())
	if err != nil {
		return nil, err
	}
	p.logger.Info("pipeline started",
		"lesson", lesson.Title,
		"run_id", st.RunID,
		"output_dir", st.OutputDir)

	steps := []func(context.Context, *State) error{
		p.developConcept,
		p.runResearch,
		p.writeScript,
		p.planStoryboard,
		p.generateAssets,
		p.createMetadata,
		p.createThumbnail,
		p.renderVideo,
	}
	for _, step := range steps {
		if err := step(ctx, st); err != nil {
			return st, err
		}
	}

	p.logger.Info("pipeline completed",
		"lesson", lesson.Title,
		"video", st.FinalVideoPath)
	return st, nil
}

func (p *Pipeline) developConcept(ctx context.Context, st *State) error {
	p.logger.Info("stage 1: concept development", "lesson", st.Lesson.Title)

	raw, err := p.gen.GenerateJSON(ctx, conceptPrompt(st.Lesson.Title))
	if err != nil {
		return fmt.Errorf("concept: %w", err)
	}
	var concept Concept
	if err := parseResponse("concept", raw, &concept); err != nil {
		return err
	}
	if err := st.saveArtifact("concept.json", &concept); err != nil {
		return err
	}
	st.Concept = &concept
	return nil
}

func (p *Pipeline) runResearch(ctx context.Context, st *State) error {
	if st.Concept == nil {
		return fmt.Errorf("research: %w: concept", ErrMissingDependency)
	}
	p.logger.Info("stage 2: research", "lesson", st.Lesson.Title)

	raw, err := p.gen.GenerateJSON(ctx, researchPrompt(st.Lesson.Title, st.Concept))
	if err != nil {
		return fmt.Errorf("research: %w", err)
	}
	var research Research
	if err := parseResponse("research", raw, &research); err != nil {
		return err
	}
	if err := st.saveArtifact("research.json", &research); err != nil {
		return err
	}
	st.Research = &research
	return nil
}

func (p *Pipeline) writeScript(ctx context.Context, st *State) error {
	if st.Concept == nil || st.Research == nil {
		return fmt.Errorf("script: %w: concept and research", ErrMissingDependency)
	}
	p.logger.Info("stage 3: script writing", "lesson", st.Lesson.Title)

	raw, err := p.gen.GenerateJSON(ctx, scriptPrompt(st.Lesson.Title, st.Concept, st.Research))
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}
	var script Script
	if err := parseResponse("script", raw, &script); err != nil {
		return err
	}
	if err := st.saveArtifact("script.json", &script); err != nil {
		return err
	}
	st.Script = &script
	p.logger.Info("script written",
		"segments", len(script.Segments),
		"estimated_duration", script.TotalDurationEstimate)
	return nil
}

func (p *Pipeline) planStoryboard(ctx context.Context, st *State) error {
	if st.Script == nil {
		return fmt.Errorf("storyboard: %w: script", ErrMissingDependency)
	}
	p.logger.Info("stage 4: storyboard planning", "lesson", st.Lesson.Title)

	raw, err := p.gen.GenerateJSON(ctx, storyboardPrompt(st.Lesson.Title, st.Script))
	if err != nil {
		return fmt.Errorf("storyboard: %w", err)
	}
	var storyboard Storyboard
	if err := parseResponse("storyboard", raw, &storyboard); err != nil {
		return err
	}
	if err := st.saveArtifact("storyboard.json", &storyboard); err != nil {
		return err
	}
	st.Storyboard = &storyboard
	return nil
}

// generateAssets produces one image and one video clip per script segment.
// A single segment failing is absorbed: the segment is skipped with a
// warning and the final video is assembled from whatever succeeded.
func (p *Pipeline) generateAssets(ctx context.Context, st *State) error {
	if st.Script == nil || st.Storyboard == nil {
		return fmt.Errorf("assets: %w: script and storyboard", ErrMissingDependency)
	}
	p.logger.Info("stage 5: asset generation",
		"lesson", st.Lesson.Title,
		"segments", len(st.Script.Segments))

	visuals := make(map[int]string, len(st.Storyboard.Segments))
	for _, seg := range st.Storyboard.Segments {
		visuals[seg.SegmentID] = seg.VisualDescription
	}

	assets := Assets{
		VideoSegments: make([]string, 0, len(st.Script.Segments)),
		Metadata:      AssetMetadata{TotalSegments: len(st.Script.Segments)},
	}
	for _, seg := range st.Script.Segments {
		description := visuals[seg.SegmentID]
		if description == "" {
			description = seg.VisualCue
		}

		clip, err := p.generateSegment(ctx, st, seg, description)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("assets: %w", ctx.Err())
			}
			p.logger.Warn("segment generation failed, skipping",
				"segment_id", seg.SegmentID,
				"error", err)
			continue
		}
		assets.VideoSegments = append(assets.VideoSegments, clip)
	}
	assets.Metadata.GeneratedSegments = len(assets.VideoSegments)

	if assets.Metadata.GeneratedSegments < assets.Metadata.TotalSegments {
		p.logger.Warn("asset generation incomplete",
			"requested", assets.Metadata.TotalSegments,
			"produced", assets.Metadata.GeneratedSegments)
	}
	if err := st.saveArtifact("assets.json", &assets); err != nil {
		return err
	}
	st.Assets = &assets
	return nil
}

func (p *Pipeline) generateSegment(ctx context.Context, st *State, seg ScriptSegment, description string) (string, error) {
	image, err := p.gen.GenerateImage(ctx, segmentImagePrompt(description), gemini.ImageOptions{
		AspectRatio: "16:9",
	})
	if err != nil {
		return "", fmt.Errorf("segment %d image: %w", seg.SegmentID, err)
	}

	dest := filepath.Join(st.OutputDir, fmt.Sprintf("segment_%d.mp4", seg.SegmentID))
	prompt := segmentVideoPrompt(st.Lesson.Title, seg.Script)
	if err := p.gen.GenerateVideo(ctx, prompt, image, dest); err != nil {
		return "", fmt.Errorf("segment %d video: %w", seg.SegmentID, err)
	}
	p.logger.Info("segment generated", "segment_id", seg.SegmentID, "path", dest)
	return dest, nil
}

func (p *Pipeline) createMetadata(ctx context.Context, st *State) error {
	if st.Concept == nil || st.Research == nil || st.Script == nil || st.Storyboard == nil {
		return fmt.Errorf("metadata: %w: concept, research, script and storyboard", ErrMissingDependency)
	}
	p.logger.Info("stage 6: youtube metadata", "lesson", st.Lesson.Title)

	raw, err := p.gen.GenerateJSON(ctx, metadataPrompt(st.Lesson.Title, p.channelName, st.Concept, st.Research, st.Script, st.Storyboard))
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	var meta Metadata
	if err := parseResponse("metadata", raw, &meta); err != nil {
		return err
	}
	if err := st.saveArtifact("youtube_metadata.json", &meta); err != nil {
		return err
	}
	st.Metadata = &meta
	return nil
}

// createThumbnail tries the generative image path first and falls back to a
// locally rendered thumbnail. Neither failure aborts the run: a video
// without a custom thumbnail is still publishable.
func (p *Pipeline) createThumbnail(ctx context.Context, st *State) error {
	p.logger.Info("stage 7: thumbnail", "lesson", st.Lesson.Title)

	text := st.Lesson.Title
	if st.Metadata != nil && st.Metadata.ThumbnailText != "" {
		text = st.Metadata.ThumbnailText
	}

	dest := filepath.Join(st.OutputDir, "ai_thumbnail.png")
	image, err := p.gen.GenerateImage(ctx, thumbnailPrompt(st.Lesson.Title, text), gemini.ImageOptions{
		AspectRatio: "16:9",
		WithText:    true,
	})
	if err == nil {
		err = writeFile(dest, image)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("thumbnail: %w", ctx.Err())
		}
		p.logger.Warn("thumbnail generation failed", "error", err)
		if p.thumb == nil {
			return nil
		}
		dest = filepath.Join(st.OutputDir, "fallback_thumbnail.png")
		if err := p.thumb.Render(text, dest); err != nil {
			p.logger.Warn("fallback thumbnail failed", "error", err)
			return nil
		}
	}

	if err := st.saveArtifact("thumbnail.json", &ThumbnailArtifact{Path: dest, Text: text}); err != nil {
		return err
	}
	st.ThumbnailPath = dest
	return nil
}

func (p *Pipeline) renderVideo(ctx context.Context, st *State) error {
	if st.Assets == nil {
		return fmt.Errorf("render: %w: assets", ErrMissingDependency)
	}
	if len(st.Assets.VideoSegments) == 0 {
		return fmt.Errorf("render: %w", ErrNoSegments)
	}
	p.logger.Info("stage 8: final video assembly",
		"lesson", st.Lesson.Title,
		"segments", len(st.Assets.VideoSegments))

	dest := filepath.Join(st.OutputDir, fmt.Sprintf("final_video_%s.mp4", st.RunID))
	if err := p.renderer.Concat(ctx, st.Assets.VideoSegments, dest); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if duration, err := p.renderer.Duration(ctx, dest); err != nil {
		p.logger.Warn("could not probe final video duration", "error", err)
	} else {
		p.logger.Info("final video rendered", "path", dest, "duration_seconds", duration)
	}

	summary := FinalSummary{
		LessonTitle:       st.Lesson.Title,
		VideoPath:         dest,
		OutputDirectory:   st.OutputDir,
		SegmentsGenerated: st.Assets.Metadata.GeneratedSegments,
		YouTubeMetadata:   st.Metadata,
		PipelineCompleted: true,
		Timestamp:         p.now().Format(time.RFC3339),
	}
	if err := st.saveArtifact("final_summary.json", &summary); err != nil {
		return err
	}
	st.FinalVideoPath = dest
	return nil
}

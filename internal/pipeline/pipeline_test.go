package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlane/videoforge/internal/gemini"
	"github.com/tutorlane/videoforge/internal/plan"
)

const (
	conceptJSON = `{
		"main_concept": "goroutines explained from first principles",
		"target_audience": "developers new to Go",
		"purpose": "write concurrent code confidently",
		"unique_angles": ["scheduler internals"],
		"key_takeaways": ["goroutines are cheap"],
		"hook_ideas": ["a million goroutines on a laptop"]
	}`
	researchJSON = `{
		"market_analysis": "steady demand",
		"competitor_insights": "most videos skip the scheduler",
		"content_gaps": ["runtime internals"],
		"unique_positioning": "internals-first walkthrough",
		"key_points_to_cover": ["go keyword", "channels"],
		"trending_keywords": ["golang concurrency"]
	}`
	scriptJSON = `{
		"segments": [
			{"segment_id": 1, "script": "What if threads were free?", "visual_cue": "laptop with racing gophers"},
			{"segment_id": 2, "script": "Goroutines start at two kilobytes.", "visual_cue": "memory diagram"},
			{"segment_id": 3, "script": "The scheduler multiplexes them.", "visual_cue": "scheduler diagram"}
		],
		"total_segments": 3,
		"total_duration_estimate": 21.0
	}`
	storyboardJSON = `{
		"segments": [
			{"segment_id": 1, "visual_description": "gophers sprinting across a laptop keyboard", "duration": 7.0},
			{"segment_id": 2, "visual_description": "stack frames shrinking into tiny boxes", "duration": 7.0},
			{"segment_id": 3, "visual_description": "conveyor belt feeding goroutines to CPUs", "duration": 7.0}
		],
		"visual_style": "flat vector illustration",
		"aspect_ratio": "16:9"
	}`
	metadataJSON = `{
		"optimized_title": "Goroutines Explained in 60 Seconds",
		"description": "Everything you need to know about goroutines.",
		"hashtags": "#golang #concurrency",
		"tags": ["golang", "goroutines"],
		"thumbnail_text": "1M GOROUTINES"
	}`
)

type fakeGen struct {
	jsonQueue []string
	jsonCalls int
	imageFn   func(prompt string, opts gemini.ImageOptions) ([]byte, error)
	videoFn   func(prompt, dest string) error

	imagePrompts []string
}

func (f *fakeGen) GenerateJSON(_ context.Context, _ string) (string, error) {
	if f.jsonCalls >= len(f.jsonQueue) {
		return "", errors.New("unexpected GenerateJSON call")
	}
	resp := f.jsonQueue[f.jsonCalls]
	f.jsonCalls++
	return resp, nil
}

func (f *fakeGen) GenerateImage(_ context.Context, prompt string, opts gemini.ImageOptions) ([]byte, error) {
	f.imagePrompts = append(f.imagePrompts, prompt)
	if f.imageFn != nil {
		return f.imageFn(prompt, opts)
	}
	return []byte("png-bytes"), nil
}

func (f *fakeGen) GenerateVideo(_ context.Context, prompt string, _ []byte, dest string) error {
	if f.videoFn != nil {
		if err := f.videoFn(prompt, dest); err != nil {
			return err
		}
	}
	return os.WriteFile(dest, []byte("mp4-bytes"), 0o600)
}

type fakeRenderer struct {
	joined    []string
	concatErr error
}

func (r *fakeRenderer) Concat(_ context.Context, segments []string, dest string) error {
	if r.concatErr != nil {
		return r.concatErr
	}
	r.joined = segments
	return os.WriteFile(dest, []byte("final-mp4"), 0o600)
}

func (r *fakeRenderer) Duration(_ context.Context, _ string) (float64, error) {
	return 21.0, nil
}

type fakeThumb struct {
	rendered bool
	text     string
}

func (t *fakeThumb) Render(text, dest string) error {
	t.rendered = true
	t.text = text
	return os.WriteFile(dest, []byte("png"), 0o600)
}

func fullQueue() []string {
	return []string{conceptJSON, researchJSON, scriptJSON, storyboardJSON, metadataJSON}
}

func testLesson() plan.Lesson {
	return plan.Lesson{
		ID:      "lesson-1700000000-abcd1234",
		Title:   "Understanding Goroutines",
		Chapter: 3,
		Part:    2,
		Status:  plan.StatusPending,
	}
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
}

func TestRunID(t *testing.T) {
	id := runID(testLesson(), fixedClock()())
	assert.Equal(t, "20260829_3_2", id)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}

func TestRunCompletesAndWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	gen := &fakeGen{jsonQueue: fullQueue()}
	renderer := &fakeRenderer{}
	p := New(gen, renderer, dir, WithClock(fixedClock()))

	st, err := p.Run(context.Background(), testLesson())
	require.NoError(t, err)

	assert.Equal(t, "20260829_3_2", st.RunID)
	assert.Equal(t, filepath.Join(dir, "lesson_20260829_3_2"), st.OutputDir)
	assert.Equal(t, filepath.Join(st.OutputDir, "final_video_20260829_3_2.mp4"), st.FinalVideoPath)
	assert.Len(t, renderer.joined, 3)

	for _, name := range []string{
		"concept.json", "research.json", "script.json", "storyboard.json",
		"assets.json", "youtube_metadata.json", "thumbnail.json", "final_summary.json",
	} {
		assert.FileExists(t, filepath.Join(st.OutputDir, name))
	}

	data, err := os.ReadFile(filepath.Join(st.OutputDir, "final_summary.json"))
	require.NoError(t, err)
	var summary FinalSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.True(t, summary.PipelineCompleted)
	assert.Equal(t, 3, summary.SegmentsGenerated)
	assert.Equal(t, "Understanding Goroutines", summary.LessonTitle)
	require.NotNil(t, summary.YouTubeMetadata)
	assert.Equal(t, "Goroutines Explained in 60 Seconds", summary.YouTubeMetadata.OptimizedTitle)
}

func TestRunAcceptsFencedResponses(t *testing.T) {
	queue := fullQueue()
	for i, resp := range queue {
		queue[i] = "```json\n" + resp + "\n```"
	}
	gen := &fakeGen{jsonQueue: queue}
	p := New(gen, &fakeRenderer{}, t.TempDir(), WithClock(fixedClock()))

	st, err := p.Run(context.Background(), testLesson())
	require.NoError(t, err)
	require.NotNil(t, st.Script)
	assert.Len(t, st.Script.Segments, 3)
}

func TestRunAbortsOnMalformedResponse(t *testing.T) {
	gen := &fakeGen{jsonQueue: []string{conceptJSON, "not json at all"}}
	p := New(gen, &fakeRenderer{}, t.TempDir(), WithClock(fixedClock()))

	st, err := p.Run(context.Background(), testLesson())
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.NotNil(t, st.Concept)
	assert.Nil(t, st.Research)
}

func TestSegmentFailureIsAbsorbed(t *testing.T) {
	gen := &fakeGen{
		jsonQueue: fullQueue(),
		imageFn: func(prompt string, opts gemini.ImageOptions) ([]byte, error) {
			if strings.Contains(prompt, "stack frames shrinking") {
				return nil, gemini.ErrNoImage
			}
			return []byte("png"), nil
		},
	}
	renderer := &fakeRenderer{}
	p := New(gen, renderer, t.TempDir(), WithClock(fixedClock()))

	st, err := p.Run(context.Background(), testLesson())
	require.NoError(t, err)

	require.NotNil(t, st.Assets)
	assert.Equal(t, 3, st.Assets.Metadata.TotalSegments)
	assert.Equal(t, 2, st.Assets.Metadata.GeneratedSegments)
	assert.Len(t, renderer.joined, 2)
	for _, clip := range st.Assets.VideoSegments {
		assert.NotContains(t, clip, "segment_2")
	}
}

func TestAllSegmentsFailingStopsRender(t *testing.T) {
	gen := &fakeGen{
		jsonQueue: fullQueue(),
		videoFn: func(_, _ string) error {
			return gemini.ErrGenerationFailed
		},
	}
	p := New(gen, &fakeRenderer{}, t.TempDir(), WithClock(fixedClock()))

	st, err := p.Run(context.Background(), testLesson())
	require.ErrorIs(t, err, ErrNoSegments)
	require.NotNil(t, st.Assets)
	assert.Equal(t, 0, st.Assets.Metadata.GeneratedSegments)
	assert.Empty(t, st.FinalVideoPath)
}

func TestStoryboardMismatchFallsBackToVisualCue(t *testing.T) {
	storyboardMissingThird := `{
		"segments": [
			{"segment_id": 1, "visual_description": "gophers sprinting", "duration": 7.0},
			{"segment_id": 2, "visual_description": "tiny stacks", "duration": 7.0}
		],
		"visual_style": "flat vector illustration",
		"aspect_ratio": "16:9"
	}`
	gen := &fakeGen{jsonQueue: []string{conceptJSON, researchJSON, scriptJSON, storyboardMissingThird, metadataJSON}}
	p := New(gen, &fakeRenderer{}, t.TempDir(), WithClock(fixedClock()))

	_, err := p.Run(context.Background(), testLesson())
	require.NoError(t, err)

	var sawCue bool
	for _, prompt := range gen.imagePrompts {
		if strings.Contains(prompt, "scheduler diagram") {
			sawCue = true
		}
	}
	assert.True(t, sawCue, "third segment should fall back to the script visual cue")
}

func TestThumbnailFailureIsNonFatal(t *testing.T) {
	gen := &fakeGen{
		jsonQueue: fullQueue(),
		imageFn: func(prompt string, opts gemini.ImageOptions) ([]byte, error) {
			if opts.WithText {
				return nil, gemini.ErrNoImage
			}
			return []byte("png"), nil
		},
	}
	p := New(gen, &fakeRenderer{}, t.TempDir(), WithClock(fixedClock()))

	st, err := p.Run(context.Background(), testLesson())
	require.NoError(t, err)
	assert.Empty(t, st.ThumbnailPath)
	assert.NotEmpty(t, st.FinalVideoPath)
}

func TestThumbnailFallsBackToLocalRenderer(t *testing.T) {
	gen := &fakeGen{
		jsonQueue: fullQueue(),
		imageFn: func(prompt string, opts gemini.ImageOptions) ([]byte, error) {
			if opts.WithText {
				return nil, gemini.ErrNoImage
			}
			return []byte("png"), nil
		},
	}
	thumb := &fakeThumb{}
	p := New(gen, &fakeRenderer{}, t.TempDir(), WithClock(fixedClock()), WithThumbnailer(thumb))

	st, err := p.Run(context.Background(), testLesson())
	require.NoError(t, err)
	assert.True(t, thumb.rendered)
	assert.Equal(t, "1M GOROUTINES", thumb.text)
	assert.Equal(t, filepath.Join(st.OutputDir, "fallback_thumbnail.png"), st.ThumbnailPath)
}

func TestRenderFailureIsFatal(t *testing.T) {
	renderer := &fakeRenderer{concatErr: fmt.Errorf("ffmpeg exploded")}
	gen := &fakeGen{jsonQueue: fullQueue()}
	p := New(gen, renderer, t.TempDir(), WithClock(fixedClock()))

	st, err := p.Run(context.Background(), testLesson())
	require.Error(t, err)
	assert.Empty(t, st.FinalVideoPath)
}

func TestRunStopsWhenContextCancelledDuringAssets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGen{
		jsonQueue: fullQueue(),
		imageFn: func(_ string, _ gemini.ImageOptions) ([]byte, error) {
			cancel()
			return nil, context.Canceled
		},
	}
	p := New(gen, &fakeRenderer{}, t.TempDir(), WithClock(fixedClock()))

	_, err := p.Run(ctx, testLesson())
	require.ErrorIs(t, err, context.Canceled)
}

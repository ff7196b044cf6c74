// Package pipeline implements the eight-stage video production pipeline.
// Each stage builds a prompt from the shared run state, calls the generative
// client, parses the structured response, persists it as a per-run artifact,
// and folds it back into the state for downstream stages.
package pipeline

import (
	"github.com/tutorlane/videoforge/internal/plan"
)

// Concept is the output of the concept development stage.
type Concept struct {
	MainConcept    string   `json:"main_concept"`
	TargetAudience string   `json:"target_audience"`
	Purpose        string   `json:"purpose"`
	UniqueAngles   []string `json:"unique_angles"`
	KeyTakeaways   []string `json:"key_takeaways"`
	HookIdeas      []string `json:"hook_ideas"`
}

// Research is the output of the research and validation stage.
type Research struct {
	MarketAnalysis     string   `json:"market_analysis"`
	CompetitorInsights string   `json:"competitor_insights"`
	ContentGaps        []string `json:"content_gaps"`
	UniquePositioning  string   `json:"unique_positioning"`
	KeyPointsToCover   []string `json:"key_points_to_cover"`
	TrendingKeywords   []string `json:"trending_keywords"`
}

// ScriptSegment is one beat of the script: roughly seven seconds of
// narration plus a visual cue for asset generation.
type ScriptSegment struct {
	SegmentID int    `json:"segment_id"`
	Script    string `json:"script"`
	VisualCue string `json:"visual_cue"`
}

// Script is the output of the script writing stage. The declared totals are
// the model's own estimates and are not validated against the segment list.
type Script struct {
	Segments              []ScriptSegment `json:"segments"`
	TotalSegments         int             `json:"total_segments"`
	TotalDurationEstimate float64         `json:"total_duration_estimate"`
}

// StoryboardSegment describes the visual for one script segment.
type StoryboardSegment struct {
	SegmentID         int     `json:"segment_id"`
	VisualDescription string  `json:"visual_description"`
	Duration          float64 `json:"duration"`
}

// Storyboard is the output of the storyboard planning stage.
type Storyboard struct {
	Segments    []StoryboardSegment `json:"segments"`
	VisualStyle string              `json:"visual_style"`
	AspectRatio string              `json:"aspect_ratio"`
}

// AssetMetadata records how many segments were requested versus produced.
// The two differ when individual segment generations fail and are absorbed.
type AssetMetadata struct {
	TotalSegments     int `json:"total_segments"`
	GeneratedSegments int `json:"generated_segments"`
}

// Assets is the output of the asset generation stage: the ordered list of
// produced clip paths. A failed segment is simply absent from the list.
type Assets struct {
	VideoSegments []string      `json:"video_segments"`
	Metadata      AssetMetadata `json:"metadata"`
}

// Metadata is the output of the YouTube metadata stage.
type Metadata struct {
	OptimizedTitle string   `json:"optimized_title"`
	Description    string   `json:"description"`
	Hashtags       string   `json:"hashtags"`
	Tags           []string `json:"tags"`
	ThumbnailText  string   `json:"thumbnail_text"`
}

// ThumbnailArtifact records the produced thumbnail for the audit trail.
type ThumbnailArtifact struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// FinalSummary is the closing artifact of a completed run.
type FinalSummary struct {
	LessonTitle       string    `json:"lesson_title"`
	VideoPath         string    `json:"video_path"`
	OutputDirectory   string    `json:"output_directory"`
	SegmentsGenerated int       `json:"segments_generated"`
	YouTubeMetadata   *Metadata `json:"youtube_metadata,omitempty"`
	PipelineCompleted bool      `json:"pipeline_completed"`
	Timestamp         string    `json:"timestamp"`
}

// State is the shared mutable state of one pipeline run. Fields are
// populated progressively: stage N reads the fields of stages < N and a
// missing dependency is a fatal precondition violation for the run.
type State struct {
	Lesson    plan.Lesson
	RunID     string
	OutputDir string

	Concept    *Concept
	Research   *Research
	Script     *Script
	Storyboard *Storyboard
	Assets     *Assets
	Metadata   *Metadata

	ThumbnailPath  string
	FinalVideoPath string
}

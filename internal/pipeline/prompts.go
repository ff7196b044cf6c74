package pipeline

import (
	"fmt"
	"strings"
)

func conceptPrompt(title string) string {
	return fmt.Sprintf(`You are an expert educational content strategist.
Develop the core concept for a YouTube lesson video titled "%s".

Return ONLY a JSON object with this exact structure:
{
  "main_concept": "one-sentence core idea of the lesson",
  "target_audience": "who this lesson is for",
  "purpose": "what the viewer will be able to do afterwards",
  "unique_angles": ["angle 1", "angle 2", "angle 3"],
  "key_takeaways": ["takeaway 1", "takeaway 2", "takeaway 3"],
  "hook_ideas": ["hook 1", "hook 2", "hook 3"]
}`, title)
}

func researchPrompt(title string, concept *Concept) string {
	return fmt.Sprintf(`You are a content market researcher.
Research the landscape for an educational video titled "%s".

Core concept: %s
Target audience: %s

Return ONLY a JSON object with this exact structure:
{
  "market_analysis": "current demand and search interest for this topic",
  "competitor_insights": "what existing videos on this topic do well and poorly",
  "content_gaps": ["gap 1", "gap 2"],
  "unique_positioning": "how this video should differentiate itself",
  "key_points_to_cover": ["point 1", "point 2", "point 3"],
  "trending_keywords": ["keyword 1", "keyword 2", "keyword 3"]
}`, title, concept.MainConcept, concept.TargetAudience)
}

func scriptPrompt(title string, concept *Concept, research *Research) string {
	return fmt.Sprintf(`You are a professional scriptwriter for educational YouTube videos.
Write the full script for a video titled "%s".

Core concept: %s
Unique positioning: %s
Key points to cover: %s

Split the script into segments of roughly 7 seconds of narration each.
Keep each segment's narration between 15 and 20 words.
Each segment needs a visual cue describing what should be on screen.

Return ONLY a JSON object with this exact structure:
{
  "segments": [
    {"segment_id": 1, "script": "narration text", "visual_cue": "what is shown"},
    {"segment_id": 2, "script": "narration text", "visual_cue": "what is shown"}
  ],
  "total_segments": 2,
  "total_duration_estimate": 14.0
}`, title, concept.MainConcept, research.UniquePositioning,
		strings.Join(research.KeyPointsToCover, "; "))
}

func storyboardPrompt(title string, script *Script) string {
	var cues strings.Builder
	for _, seg := range script.Segments {
		fmt.Fprintf(&cues, "Segment %d: %s\n", seg.SegmentID, seg.VisualCue)
	}
	return fmt.Sprintf(`You are a storyboard artist for educational videos.
Plan the visuals for a video titled "%s" with these segments:

%s
Expand every visual cue into a detailed visual description suitable for an
image generation model. Keep a consistent visual style across segments.

Return ONLY a JSON object with this exact structure:
{
  "segments": [
    {"segment_id": 1, "visual_description": "detailed scene description", "duration": 7.0}
  ],
  "visual_style": "overall style description",
  "aspect_ratio": "16:9"
}`, title, cues.String())
}

func metadataPrompt(title, channel string, concept *Concept, research *Research, script *Script, storyboard *Storyboard) string {
	return fmt.Sprintf(`You are a YouTube SEO specialist for the channel "%s".
Create upload metadata for an educational video titled "%s".

Core concept: %s
Trending keywords: %s
Video length: %d segments, about %.0f seconds
Visual style: %s

Return ONLY a JSON object with this exact structure:
{
  "optimized_title": "SEO-optimized title under 60 characters",
  "description": "multi-paragraph description with keywords",
  "hashtags": "#tag1 #tag2 #tag3",
  "tags": ["tag 1", "tag 2", "tag 3"],
  "thumbnail_text": "3-5 punchy words for the thumbnail"
}`, channel, title, concept.MainConcept,
		strings.Join(research.TrendingKeywords, ", "),
		len(script.Segments), script.TotalDurationEstimate,
		storyboard.VisualStyle)
}

func segmentImagePrompt(description string) string {
	return fmt.Sprintf("Professional educational image: %s, clean modern style, no watermarks", description)
}

func segmentVideoPrompt(title, narration string) string {
	return fmt.Sprintf("Educational video about %s: %s", title, narration)
}

func thumbnailPrompt(title, text string) string {
	return fmt.Sprintf(`YouTube thumbnail for an educational video titled "%s".
Bold readable text saying "%s", high contrast, vibrant colors, clean composition`, title, text)
}

package upload

import (
	"fmt"
	"strings"

	"github.com/tutorlane/videoforge/internal/pipeline"
)

// maxTitleLength is YouTube's hard limit on video titles.
const maxTitleLength = 100

// NewRequest builds an upload request from a pipeline run, falling back to
// lesson-derived defaults wherever the generated metadata is missing.
func NewRequest(st *pipeline.State, channelName, privacy string) Request {
	req := Request{
		VideoPath:     st.FinalVideoPath,
		ThumbnailPath: st.ThumbnailPath,
		Privacy:       privacy,
	}

	meta := st.Metadata
	if meta != nil && meta.OptimizedTitle != "" {
		req.Title = meta.OptimizedTitle
	} else {
		req.Title = fmt.Sprintf("%s | %s", st.Lesson.Title, channelName)
	}
	if len(req.Title) > maxTitleLength {
		req.Title = req.Title[:maxTitleLength-3] + "..."
	}

	var desc strings.Builder
	if meta != nil && meta.Description != "" {
		desc.WriteString(meta.Description)
	} else {
		fmt.Fprintf(&desc, "In this lesson: %s.", st.Lesson.Title)
	}
	if meta != nil && meta.Hashtags != "" {
		desc.WriteString("\n\n")
		desc.WriteString(meta.Hashtags)
	}
	fmt.Fprintf(&desc, "\n\nPart of the %s series.", channelName)
	req.Description = desc.String()

	if meta != nil && len(meta.Tags) > 0 {
		req.Tags = meta.Tags
	} else {
		req.Tags = []string{"education", "tutorial", channelName}
	}
	return req
}

// Package plan provides the content-plan document and lesson store.
// The plan is a JSON file listing curriculum lessons; the store selects the
// next pending lesson, records completion or failure, and summarizes progress.
package plan

import "errors"

// Status represents the production state of a lesson.
type Status string

const (
	// StatusPending indicates the lesson has not been produced yet.
	StatusPending Status = "pending"
	// StatusCompleted indicates a video was produced and published.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the last production attempt failed.
	StatusFailed Status = "failed"
)

// IsValid returns true if the status is a known lesson status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// ErrInvalidStatus is returned when an unknown status is written to a lesson.
var ErrInvalidStatus = errors.New("plan: invalid lesson status")

// Lesson is one curriculum unit to be turned into a video.
// ID is a stable generated identifier; lessons in hand-written plans may lack
// one, in which case the store assigns it on load.
type Lesson struct {
	// ID is the stable identifier used to address the lesson.
	ID string `json:"id,omitempty"`
	// Title is the human-readable lesson title.
	Title string `json:"title" validate:"required"`
	// Chapter is the curriculum chapter number.
	Chapter int `json:"chapter" validate:"min=0"`
	// Part is the lesson's position within the chapter.
	Part int `json:"part" validate:"min=0"`
	// Status is the production state.
	Status Status `json:"status" validate:"required,oneof=pending completed failed"`
	// VideoPath is the path of the produced video, set on completion.
	VideoPath string `json:"video_path,omitempty"`
}

// Document is the content-plan file format: a flat list of lessons in
// curriculum order. The whole document is rewritten on every mutation.
type Document struct {
	Lessons []Lesson `json:"lessons" validate:"dive"`
}

// Summary aggregates lesson counts by status plus the per-run output
// directories found on disk.
type Summary struct {
	TotalLessons      int      `json:"total_lessons"`
	Completed         int      `json:"completed"`
	Pending           int      `json:"pending"`
	Failed            int      `json:"failed"`
	OutputDirectories []string `json:"output_directories"`
}

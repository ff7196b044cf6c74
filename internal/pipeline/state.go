package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tutorlane/videoforge/internal/plan"
)

// runID builds the identifier for one pipeline run:
// a date stamp plus the lesson's chapter and part numbers.
func runID(lesson plan.Lesson, now time.Time) string {
	return fmt.Sprintf("%s_%d_%d", now.Format("20060102"), lesson.Chapter, lesson.Part)
}

// newState prepares the run state and creates the per-run output directory.
func newState(lesson plan.Lesson, outputBase string, now time.Time) (*State, error) {
	id := runID(lesson, now)
	dir := filepath.Join(outputBase, "lesson_"+id)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	return &State{
		Lesson:    lesson,
		RunID:     id,
		OutputDir: dir,
	}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// saveArtifact persists a stage result as an indented JSON file inside the
// run directory so every intermediate output survives for inspection.
func (s *State) saveArtifact(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact %s: %w", name, err)
	}
	path := filepath.Join(s.OutputDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing artifact %s: %w", name, err)
	}
	return nil
}

package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tutorlane/videoforge/internal/plan/id"
)

// ErrNoPendingLesson is returned when the plan has no lesson left to produce.
var ErrNoPendingLesson = errors.New("plan: no pending lesson")

// Store reads and writes the content-plan document on disk.
// All mutations rewrite the whole document atomically.
type Store struct {
	path      string
	outputDir string
	logger    *slog.Logger
	validate  *validator.Validate
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithOutputDir sets the output root scanned by Summary for per-run
// directories. Defaults to "output".
func WithOutputDir(dir string) StoreOption {
	return func(s *Store) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a lesson store backed by the document at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:      path,
		outputDir: "output",
		logger:    slog.Default(),
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and validates the content-plan document. Lessons missing a
// stable ID are assigned one and the document is written back, so later
// status updates can address lessons without relying on title identity.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 - path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("plan: read document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("plan: parse document: %w", err)
	}
	if err := s.validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("plan: invalid document: %w", err)
	}

	assigned := 0
	for i := range doc.Lessons {
		if doc.Lessons[i].ID == "" {
			doc.Lessons[i].ID = id.Generate()
			assigned++
		}
	}
	if assigned > 0 {
		s.logger.Info("assigned lesson IDs",
			slog.Int("count", assigned),
			slog.String("path", s.path),
		)
		if err := s.Save(&doc); err != nil {
			return nil, err
		}
	}

	return &doc, nil
}

// Save rewrites the whole document. The write goes through a temp file and
// rename so a crash never leaves a truncated plan behind.
func (s *Store) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("plan: marshal document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".plan-*.json")
	if err != nil {
		return fmt.Errorf("plan: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("plan: write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("plan: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("plan: replace document: %w", err)
	}
	return nil
}

// NextPending returns the first lesson in stored order whose status is
// pending. Returns ErrNoPendingLesson when every lesson is completed or
// failed.
func (s *Store) NextPending() (*Lesson, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Lessons {
		if doc.Lessons[i].Status == StatusPending {
			lesson := doc.Lessons[i]
			return &lesson, nil
		}
	}
	return nil, ErrNoPendingLesson
}

// SetStatus updates one lesson's status (and video path, if non-empty) and
// persists the whole document. The lesson is resolved by ID first, then by
// exact title so hand-edited plans without IDs still work. An unknown key is
// a logged no-op.
func (s *Store) SetStatus(key string, status Status, videoPath string) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	doc, err := s.Load()
	if err != nil {
		return err
	}

	idx := -1
	for i := range doc.Lessons {
		if doc.Lessons[i].ID == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i := range doc.Lessons {
			if doc.Lessons[i].Title == key {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		s.logger.Warn("lesson not found in plan, status not recorded",
			slog.String("key", key),
			slog.String("status", string(status)),
		)
		return nil
	}

	doc.Lessons[idx].Status = status
	if videoPath != "" {
		doc.Lessons[idx].VideoPath = videoPath
	}
	return s.Save(doc)
}

// Summarize counts lessons by status and lists the per-run output
// directories found under the output root.
func (s *Store) Summarize() (*Summary, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, lesson := range doc.Lessons {
		sum.TotalLessons++
		switch lesson.Status {
		case StatusCompleted:
			sum.Completed++
		case StatusFailed:
			sum.Failed++
		default:
			sum.Pending++
		}
	}

	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return sum, nil
		}
		return nil, fmt.Errorf("plan: scan output dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "lesson_") {
			sum.OutputDirectories = append(sum.OutputDirectories, filepath.Join(s.outputDir, e.Name()))
		}
	}
	return sum, nil
}

package plan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, doc *Document) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "content_plan.json")
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testDoc() *Document {
	return &Document{
		Lessons: []Lesson{
			{Title: "Intro to Embeddings", Chapter: 1, Part: 1, Status: StatusCompleted, VideoPath: "output/lesson_a/final.mp4"},
			{Title: "Vector Stores", Chapter: 1, Part: 2, Status: StatusPending},
			{Title: "Prompt Design", Chapter: 1, Part: 3, Status: StatusFailed},
			{Title: "RAG Basics", Chapter: 2, Part: 1, Status: StatusPending},
		},
	}
}

func TestStore_Load_AssignsStableIDs(t *testing.T) {
	path := writePlan(t, testDoc())
	store := NewStore(path)

	doc, err := store.Load()
	require.NoError(t, err)
	for _, lesson := range doc.Lessons {
		assert.NotEmpty(t, lesson.ID, "lesson %q should be assigned an ID", lesson.Title)
	}

	// IDs must survive a reload: the assignment is persisted.
	doc2, err := store.Load()
	require.NoError(t, err)
	for i := range doc.Lessons {
		assert.Equal(t, doc.Lessons[i].ID, doc2.Lessons[i].ID)
	}
}

func TestStore_Load_InvalidStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content_plan.json")
	raw := `{"lessons":[{"title":"Broken","chapter":1,"part":1,"status":"in_progress"}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	_, err := NewStore(path).Load()
	require.Error(t, err)
}

func TestStore_Load_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content_plan.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Load()
	require.Error(t, err)
}

func TestStore_NextPending_ReturnsFirstInStoredOrder(t *testing.T) {
	store := NewStore(writePlan(t, testDoc()))

	lesson, err := store.NextPending()
	require.NoError(t, err)
	assert.Equal(t, "Vector Stores", lesson.Title)
	assert.Equal(t, StatusPending, lesson.Status)
}

func TestStore_NextPending_NonePending(t *testing.T) {
	doc := &Document{
		Lessons: []Lesson{
			{Title: "Done", Chapter: 1, Part: 1, Status: StatusCompleted},
			{Title: "Broken", Chapter: 1, Part: 2, Status: StatusFailed},
		},
	}
	store := NewStore(writePlan(t, doc))

	_, err := store.NextPending()
	assert.ErrorIs(t, err, ErrNoPendingLesson)
}

func TestStore_SetStatus_ByID(t *testing.T) {
	store := NewStore(writePlan(t, testDoc()))
	lesson, err := store.NextPending()
	require.NoError(t, err)

	require.NoError(t, store.SetStatus(lesson.ID, StatusCompleted, "output/lesson_b/final.mp4"))

	doc, err := store.Load()
	require.NoError(t, err)
	var updated *Lesson
	for i := range doc.Lessons {
		if doc.Lessons[i].ID == lesson.ID {
			updated = &doc.Lessons[i]
		}
	}
	require.NotNil(t, updated)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, "output/lesson_b/final.mp4", updated.VideoPath)
}

func TestStore_SetStatus_ByTitle_LeavesOthersUntouched(t *testing.T) {
	store := NewStore(writePlan(t, testDoc()))
	before, err := store.Load()
	require.NoError(t, err)

	require.NoError(t, store.SetStatus("RAG Basics", StatusFailed, ""))

	after, err := store.Load()
	require.NoError(t, err)
	require.Len(t, after.Lessons, len(before.Lessons))
	for i := range after.Lessons {
		if after.Lessons[i].Title == "RAG Basics" {
			assert.Equal(t, StatusFailed, after.Lessons[i].Status)
			assert.Empty(t, after.Lessons[i].VideoPath)
			continue
		}
		// Every other lesson must round-trip unchanged.
		assert.Equal(t, before.Lessons[i], after.Lessons[i])
	}
}

func TestStore_SetStatus_UnknownKeyIsNoOp(t *testing.T) {
	store := NewStore(writePlan(t, testDoc()))
	before, err := store.Load()
	require.NoError(t, err)

	require.NoError(t, store.SetStatus("No Such Lesson", StatusCompleted, "x.mp4"))

	after, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, before.Lessons, after.Lessons)
}

func TestStore_SetStatus_InvalidStatus(t *testing.T) {
	store := NewStore(writePlan(t, testDoc()))
	err := store.SetStatus("Vector Stores", Status("running"), "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStore_Summarize(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, "lesson_20250101_1_1"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, "lesson_20250102_1_2"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, "scratch"), 0o750))

	store := NewStore(writePlan(t, testDoc()), WithOutputDir(outDir))

	sum, err := store.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalLessons)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 2, sum.Pending)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, sum.TotalLessons, sum.Completed+sum.Pending+sum.Failed)
	assert.Len(t, sum.OutputDirectories, 2)
}

func TestStore_Summarize_MissingOutputDir(t *testing.T) {
	store := NewStore(writePlan(t, testDoc()), WithOutputDir(filepath.Join(t.TempDir(), "nope")))

	sum, err := store.Summarize()
	require.NoError(t, err)
	assert.Empty(t, sum.OutputDirectories)
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusCompleted.IsValid())
	assert.True(t, StatusFailed.IsValid())
	assert.False(t, Status("queued").IsValid())
}

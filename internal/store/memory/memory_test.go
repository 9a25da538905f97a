package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCourseAndJob(t *testing.T, s *Store) (*domain.Course, *domain.Job) {
	t.Helper()
	ctx := context.Background()
	course, err := domain.NewCourse(uuid.New(), "Graph Theory", domain.PurposeExam, domain.DifficultyIntermediate)
	require.NoError(t, err)
	job, err := domain.NewJob(course.ID, course.UserID, nil)
	require.NoError(t, err)

	stores := s.Stores()
	require.NoError(t, stores.Courses.Create(ctx, course))
	require.NoError(t, stores.Jobs.Create(ctx, job))
	require.NoError(t, stores.Courses.AttachJob(ctx, course.ID, job.ID))
	return course, job
}

func TestCourseStore(t *testing.T) {
	ctx := context.Background()
	s := New()
	course, job := seedCourseAndJob(t, s)
	courses := s.Stores().Courses

	got, err := courses.GetByID(ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GenerationJobID)
	assert.Equal(t, job.ID, *got.GenerationJobID)

	err = courses.AttachJob(ctx, course.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrJobAlreadyAttached)

	changed, err := courses.Publish(ctx, course.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = courses.Publish(ctx, course.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second publish is a no-op")

	_, err = courses.Publish(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrCourseNotFound)

	_, err = courses.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrCourseNotFound)
}

func TestJobStoreEnforcesOneJobPerCourse(t *testing.T) {
	ctx := context.Background()
	s := New()
	course, _ := seedCourseAndJob(t, s)

	second, err := domain.NewJob(course.ID, course.UserID, nil)
	require.NoError(t, err)
	err = s.Stores().Jobs.Create(ctx, second)
	assert.ErrorIs(t, err, store.ErrJobExists)
}

func TestJobStoreUpdateGuards(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, job := seedCourseAndJob(t, s)
	jobs := s.Stores().Jobs
	now := time.Now()

	require.NoError(t, job.Start(now))
	require.NoError(t, job.Advance(60, "flashcards", now))
	require.NoError(t, jobs.Update(ctx, job))

	stale, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	stale.ProgressPercentage = 40
	assert.ErrorIs(t, jobs.Update(ctx, stale), store.ErrJobConflict, "progress must not decrease")

	require.NoError(t, job.Fail("boom", now))
	require.NoError(t, jobs.Update(ctx, job))

	reopened := *job
	reopened.Status = domain.JobStatusProcessing
	assert.ErrorIs(t, jobs.Update(ctx, &reopened), store.ErrJobConflict, "terminal jobs are frozen")

	got, err := jobs.GetByCourseID(ctx, job.CourseID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Equal(t, 60, got.ProgressPercentage)
	assert.NotNil(t, got.CompletedAt)
}

func TestJobStoreListings(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, pending := seedCourseAndJob(t, s)
	_, processing := seedCourseAndJob(t, s)
	jobs := s.Stores().Jobs

	require.NoError(t, processing.Start(time.Now().Add(-time.Hour)))
	require.NoError(t, jobs.Update(ctx, processing))

	listed, err := jobs.ListByStatus(ctx, domain.JobStatusPending, domain.JobStatusProcessing)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, pending.ID, listed[0].ID, "oldest first")

	stale, err := jobs.ListStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, processing.ID, stale[0].ID)

	fresh, err := jobs.ListStale(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, fresh)

	// a pending job nobody picked up is stale too
	pending.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, jobs.Update(ctx, pending))
	stale, err = jobs.ListStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.ElementsMatch(t, []uuid.UUID{pending.ID, processing.ID}, []uuid.UUID{stale[0].ID, stale[1].ID})

	require.NoError(t, processing.Complete("", time.Now().Add(-time.Hour)))
	require.NoError(t, jobs.Update(ctx, processing))
	stale, err = jobs.ListStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, pending.ID, stale[0].ID, "terminal jobs are never stale")
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	course, _ := seedCourseAndJob(t, s)

	chapter, err := domain.NewChapter(course.ID, 1, "Intro", "Body", 5)
	require.NoError(t, err)

	txErr := errors.New("progress write failed")
	err = s.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		require.NoError(t, tx.Artifacts.CreateChapters(ctx, []*domain.Chapter{chapter}))
		return txErr
	})
	assert.ErrorIs(t, err, txErr)

	counts, err := s.Stores().Artifacts.CountByCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Chapters)

	err = s.InTx(ctx, func(ctx context.Context, tx store.Stores) error {
		return tx.Artifacts.CreateChapters(ctx, []*domain.Chapter{chapter})
	})
	require.NoError(t, err)
	assert.Len(t, s.Chapters(course.ID), 1)
}

func TestArtifactBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	course, _ := seedCourseAndJob(t, s)

	good, err := domain.NewQnA(course.ID, "Q", "A")
	require.NoError(t, err)
	bad := &domain.QnA{ID: uuid.New(), CourseID: course.ID}

	err = s.Stores().Artifacts.CreateQnAs(ctx, []*domain.QnA{good, bad})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrValidation)

	counts, err := s.Stores().Artifacts.CountByCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.QnAs)
}

func TestNotebookIsUniquePerCourse(t *testing.T) {
	ctx := context.Background()
	s := New()
	course, _ := seedCourseAndJob(t, s)
	artifacts := s.Stores().Artifacts

	concepts := []domain.KeyConcept{{Term: "Graph", Definition: "Vertices and edges"}}
	first, err := domain.NewNotebook(course.ID, concepts, "A road map", "Review chapters")
	require.NoError(t, err)
	second, err := domain.NewNotebook(course.ID, concepts, "A road map", "Review chapters")
	require.NoError(t, err)

	require.NoError(t, artifacts.CreateNotebook(ctx, first))
	assert.ErrorIs(t, artifacts.CreateNotebook(ctx, second), store.ErrNotebookExists)
}

func TestFailArtifactWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	course, _ := seedCourseAndJob(t, s)
	injected := errors.New("disk full")

	s.FailArtifactWrites(domain.ArtifactFlashcards, injected)
	card, err := domain.NewFlashcard(course.ID, "Q", "A", domain.DifficultyBeginner)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Stores().Artifacts.CreateFlashcards(ctx, []*domain.Flashcard{card}), injected)

	s.FailArtifactWrites(domain.ArtifactFlashcards, nil)
	assert.NoError(t, s.Stores().Artifacts.CreateFlashcards(ctx, []*domain.Flashcard{card}))
}

func TestActivityAppend(t *testing.T) {
	ctx := context.Background()
	s := New()
	course, _ := seedCourseAndJob(t, s)

	entry, err := domain.NewActivityLogEntry(domain.AgentCourseGenerator, course.UserID, &course.ID,
		domain.LogLevelInfo, "generated", nil)
	require.NoError(t, err)
	require.NoError(t, s.Stores().Activity.Append(ctx, entry))

	entries := s.ActivityEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "generated", entries[0].Message)

	err = s.Stores().Activity.Append(ctx, &domain.ActivityLogEntry{})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

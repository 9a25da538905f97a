// Package memory is an in-process implementation of the store contracts.
// Transactions take a snapshot of the whole data set and swap it in on
// commit, so a failed InTx leaves no partial writes behind.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

type state struct {
	courses     map[uuid.UUID]domain.Course
	jobs        map[uuid.UUID]domain.Job
	jobByCourse map[uuid.UUID]uuid.UUID
	chapters    []domain.Chapter
	flashcards  []domain.Flashcard
	mcqs        []domain.MultipleChoiceQuestion
	qnas        []domain.QnA
	notebooks   map[uuid.UUID]domain.Notebook
	resources   []domain.Resource
	activity    []domain.ActivityLogEntry
	jobSequence []uuid.UUID
}

func newState() *state {
	return &state{
		courses:     make(map[uuid.UUID]domain.Course),
		jobs:        make(map[uuid.UUID]domain.Job),
		jobByCourse: make(map[uuid.UUID]uuid.UUID),
		notebooks:   make(map[uuid.UUID]domain.Notebook),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.courses {
		c.courses[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	for k, v := range s.jobByCourse {
		c.jobByCourse[k] = v
	}
	for k, v := range s.notebooks {
		c.notebooks[k] = v
	}
	c.chapters = append([]domain.Chapter(nil), s.chapters...)
	c.flashcards = append([]domain.Flashcard(nil), s.flashcards...)
	c.mcqs = append([]domain.MultipleChoiceQuestion(nil), s.mcqs...)
	c.qnas = append([]domain.QnA(nil), s.qnas...)
	c.resources = append([]domain.Resource(nil), s.resources...)
	c.activity = append([]domain.ActivityLogEntry(nil), s.activity...)
	c.jobSequence = append([]uuid.UUID(nil), s.jobSequence...)
	return c
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// Store holds every entity in memory and implements store.UnitOfWork.
type Store struct {
	mu    sync.Mutex
	state *state

	faultMu sync.Mutex
	faults  map[domain.ArtifactKind]error
}

var _ store.UnitOfWork = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		state:  newState(),
		faults: make(map[domain.ArtifactKind]error),
	}
}

// FailArtifactWrites makes every write of the given artifact kind return err.
// A nil err clears the fault.
func (s *Store) FailArtifactWrites(kind domain.ArtifactKind, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.faults, kind)
		return
	}
	s.faults[kind] = err
}

func (s *Store) fault(kind domain.ArtifactKind) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[kind]
}

// Stores returns stores that operate directly on the committed data.
func (s *Store) Stores() store.Stores {
	return s.bind(&s.mu, func() *state { return s.state })
}

// InTx runs fn against a private snapshot and commits it if fn succeeds.
// Transactions are serialized with every other access to the store.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(ctx, s.bind(noopLocker{}, func() *state { return snapshot })); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = snapshot
	return nil
}

func (s *Store) bind(l sync.Locker, st func() *state) store.Stores {
	v := &view{lock: l, state: st, owner: s}
	return store.Stores{
		Courses:   &courseStore{v},
		Jobs:      &jobStore{v},
		Artifacts: &artifactStore{v},
		Activity:  &activityStore{v},
	}
}

type view struct {
	lock  sync.Locker
	state func() *state
	owner *Store
}

// with runs fn holding the view's lock.
func (v *view) with(fn func(st *state) error) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	return fn(v.state())
}

// ActivityEntries returns a copy of every appended activity entry.
func (s *Store) ActivityEntries() []domain.ActivityLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ActivityLogEntry(nil), s.state.activity...)
}

// Chapters returns the chapters stored for a course in insertion order.
func (s *Store) Chapters(courseID uuid.UUID) []domain.Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Chapter
	for _, c := range s.state.chapters {
		if c.CourseID == courseID {
			out = append(out, c)
		}
	}
	return out
}

package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

type artifactStore struct{ v *view }

var _ store.ArtifactStore = (*artifactStore)(nil)

// validateAll checks every record before anything is written, so a batch is
// stored completely or not at all.
func validateAll[T interface{ Validate() error }](items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: item %d: %v", store.ErrInvalidEntity, i, err)
		}
	}
	return nil
}

func (a *artifactStore) write(kind domain.ArtifactKind, validate func() error, apply func(st *state) error) error {
	if err := a.v.owner.fault(kind); err != nil {
		return err
	}
	if err := validate(); err != nil {
		return err
	}
	return a.v.with(apply)
}

func courseExists(st *state, courseID uuid.UUID) error {
	if _, ok := st.courses[courseID]; !ok {
		return fmt.Errorf("%w: artifact references unknown course", store.ErrInvalidEntity)
	}
	return nil
}

func (a *artifactStore) CreateChapters(ctx context.Context, chapters []*domain.Chapter) error {
	return a.write(domain.ArtifactChapters, func() error { return validateAll(chapters) }, func(st *state) error {
		for _, c := range chapters {
			if err := courseExists(st, c.CourseID); err != nil {
				return err
			}
		}
		for _, c := range chapters {
			st.chapters = append(st.chapters, *c)
		}
		return nil
	})
}

func (a *artifactStore) CreateFlashcards(ctx context.Context, flashcards []*domain.Flashcard) error {
	return a.write(domain.ArtifactFlashcards, func() error { return validateAll(flashcards) }, func(st *state) error {
		for _, f := range flashcards {
			if err := courseExists(st, f.CourseID); err != nil {
				return err
			}
		}
		for _, f := range flashcards {
			st.flashcards = append(st.flashcards, *f)
		}
		return nil
	})
}

func (a *artifactStore) CreateMultipleChoiceQuestions(ctx context.Context, questions []*domain.MultipleChoiceQuestion) error {
	return a.write(domain.ArtifactMCQs, func() error { return validateAll(questions) }, func(st *state) error {
		for _, q := range questions {
			if err := courseExists(st, q.CourseID); err != nil {
				return err
			}
		}
		for _, q := range questions {
			c := *q
			c.Options = append([]string(nil), q.Options...)
			st.mcqs = append(st.mcqs, c)
		}
		return nil
	})
}

func (a *artifactStore) CreateQnAs(ctx context.Context, qnas []*domain.QnA) error {
	return a.write(domain.ArtifactQnAs, func() error { return validateAll(qnas) }, func(st *state) error {
		for _, q := range qnas {
			if err := courseExists(st, q.CourseID); err != nil {
				return err
			}
		}
		for _, q := range qnas {
			st.qnas = append(st.qnas, *q)
		}
		return nil
	})
}

func (a *artifactStore) CreateNotebook(ctx context.Context, notebook *domain.Notebook) error {
	validate := func() error {
		if err := notebook.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		return nil
	}
	return a.write(domain.ArtifactNotebook, validate, func(st *state) error {
		if err := courseExists(st, notebook.CourseID); err != nil {
			return err
		}
		if _, exists := st.notebooks[notebook.CourseID]; exists {
			return store.ErrNotebookExists
		}
		c := *notebook
		c.KeyConcepts = append([]domain.KeyConcept(nil), notebook.KeyConcepts...)
		st.notebooks[notebook.CourseID] = c
		return nil
	})
}

func (a *artifactStore) CreateResources(ctx context.Context, resources []*domain.Resource) error {
	return a.write(domain.ArtifactResources, func() error { return validateAll(resources) }, func(st *state) error {
		for _, r := range resources {
			if err := courseExists(st, r.CourseID); err != nil {
				return err
			}
		}
		for _, r := range resources {
			st.resources = append(st.resources, *r)
		}
		return nil
	})
}

func (a *artifactStore) CountByCourse(ctx context.Context, courseID uuid.UUID) (store.ArtifactCounts, error) {
	var counts store.ArtifactCounts
	err := a.v.with(func(st *state) error {
		for _, c := range st.chapters {
			if c.CourseID == courseID {
				counts.Chapters++
			}
		}
		for _, f := range st.flashcards {
			if f.CourseID == courseID {
				counts.Flashcards++
			}
		}
		for _, q := range st.mcqs {
			if q.CourseID == courseID {
				counts.MultipleChoiceQuestions++
			}
		}
		for _, q := range st.qnas {
			if q.CourseID == courseID {
				counts.QnAs++
			}
		}
		if _, ok := st.notebooks[courseID]; ok {
			counts.Notebooks = 1
		}
		for _, r := range st.resources {
			if r.CourseID == courseID {
				counts.Resources++
			}
		}
		return nil
	})
	return counts, err
}

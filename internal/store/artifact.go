package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
)

// ArtifactStore appends generated course content. Each Create call is one
// bulk write: either every record is stored or none is. There are no update
// or delete operations.
type ArtifactStore interface {
	CreateChapters(ctx context.Context, chapters []*domain.Chapter) error
	CreateFlashcards(ctx context.Context, flashcards []*domain.Flashcard) error
	CreateMultipleChoiceQuestions(ctx context.Context, questions []*domain.MultipleChoiceQuestion) error
	CreateQnAs(ctx context.Context, qnas []*domain.QnA) error

	// CreateNotebook returns ErrNotebookExists if the course already has one.
	CreateNotebook(ctx context.Context, notebook *domain.Notebook) error
	CreateResources(ctx context.Context, resources []*domain.Resource) error

	// CountByCourse reports how many artifacts of each kind a course has.
	CountByCourse(ctx context.Context, courseID uuid.UUID) (ArtifactCounts, error)
}

// ArtifactCounts is the per-kind artifact tally of one course.
type ArtifactCounts struct {
	Chapters                int `json:"chapters"`
	Flashcards              int `json:"flashcards"`
	MultipleChoiceQuestions int `json:"mcqs"`
	QnAs                    int `json:"qnas"`
	Notebooks               int `json:"notebooks"`
	Resources               int `json:"resources"`
}

// Of returns the tally for one artifact kind.
func (c ArtifactCounts) Of(kind domain.ArtifactKind) int {
	switch kind {
	case domain.ArtifactChapters:
		return c.Chapters
	case domain.ArtifactFlashcards:
		return c.Flashcards
	case domain.ArtifactMCQs:
		return c.MultipleChoiceQuestions
	case domain.ArtifactQnAs:
		return c.QnAs
	case domain.ArtifactNotebook:
		return c.Notebooks
	case domain.ArtifactResources:
		return c.Resources
	default:
		return 0
	}
}

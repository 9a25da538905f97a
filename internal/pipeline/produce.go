package pipeline

import (
	"context"
	"fmt"

	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// difficultyOr keeps a generated difficulty when it is valid and falls back
// to the course level otherwise.
func difficultyOr(d, fallback domain.Difficulty) domain.Difficulty {
	if d.IsValid() {
		return d
	}
	return fallback
}

func emptyDraft(kind domain.ArtifactKind) error {
	return fmt.Errorf("generator returned no %s", kind)
}

func produceChapters(ctx context.Context, jc *JobContext) (batch, error) {
	drafts, err := jc.Generator.Chapters(ctx, jc.Brief())
	if err != nil {
		return batch{}, err
	}
	if len(drafts) == 0 {
		return batch{}, emptyDraft(domain.ArtifactChapters)
	}

	chapters := make([]*domain.Chapter, len(drafts))
	for i, d := range drafts {
		c, err := domain.NewChapter(jc.CourseID, i+1, d.Title, d.Content, d.EstimatedReadingTimeMinutes)
		if err != nil {
			return batch{}, fmt.Errorf("chapter %d: %w", i+1, err)
		}
		chapters[i] = c
	}

	return batch{
		count: len(chapters),
		step:  fmt.Sprintf("Created %d chapters", len(chapters)),
		write: func(ctx context.Context, a store.ArtifactStore) error {
			return a.CreateChapters(ctx, chapters)
		},
	}, nil
}

func produceFlashcards(ctx context.Context, jc *JobContext) (batch, error) {
	drafts, err := jc.Generator.Flashcards(ctx, jc.Brief())
	if err != nil {
		return batch{}, err
	}
	if len(drafts) == 0 {
		return batch{}, emptyDraft(domain.ArtifactFlashcards)
	}

	cards := make([]*domain.Flashcard, len(drafts))
	for i, d := range drafts {
		f, err := domain.NewFlashcard(jc.CourseID, d.Question, d.Answer, difficultyOr(d.Difficulty, jc.Difficulty))
		if err != nil {
			return batch{}, fmt.Errorf("flashcard %d: %w", i+1, err)
		}
		cards[i] = f
	}

	return batch{
		count: len(cards),
		step:  fmt.Sprintf("Created %d flashcards", len(cards)),
		write: func(ctx context.Context, a store.ArtifactStore) error {
			return a.CreateFlashcards(ctx, cards)
		},
	}, nil
}

func produceMCQs(ctx context.Context, jc *JobContext) (batch, error) {
	drafts, err := jc.Generator.MultipleChoiceQuestions(ctx, jc.Brief())
	if err != nil {
		return batch{}, err
	}
	if len(drafts) == 0 {
		return batch{}, emptyDraft(domain.ArtifactMCQs)
	}

	questions := make([]*domain.MultipleChoiceQuestion, len(drafts))
	for i, d := range drafts {
		q, err := domain.NewMultipleChoiceQuestion(jc.CourseID, d.Question, d.Options, d.CorrectAnswer,
			d.Explanation, difficultyOr(d.Difficulty, jc.Difficulty))
		if err != nil {
			return batch{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions[i] = q
	}

	return batch{
		count: len(questions),
		step:  fmt.Sprintf("Created %d multiple-choice questions", len(questions)),
		write: func(ctx context.Context, a store.ArtifactStore) error {
			return a.CreateMultipleChoiceQuestions(ctx, questions)
		},
	}, nil
}

func produceQnAs(ctx context.Context, jc *JobContext) (batch, error) {
	drafts, err := jc.Generator.QnAs(ctx, jc.Brief())
	if err != nil {
		return batch{}, err
	}
	if len(drafts) == 0 {
		return batch{}, emptyDraft(domain.ArtifactQnAs)
	}

	qnas := make([]*domain.QnA, len(drafts))
	for i, d := range drafts {
		q, err := domain.NewQnA(jc.CourseID, d.Question, d.Answer)
		if err != nil {
			return batch{}, fmt.Errorf("qna %d: %w", i+1, err)
		}
		qnas[i] = q
	}

	return batch{
		count: len(qnas),
		step:  fmt.Sprintf("Created %d Q&A pairs", len(qnas)),
		write: func(ctx context.Context, a store.ArtifactStore) error {
			return a.CreateQnAs(ctx, qnas)
		},
	}, nil
}

func produceNotebook(ctx context.Context, jc *JobContext) (batch, error) {
	d, err := jc.Generator.Notebook(ctx, jc.Brief())
	if err != nil {
		return batch{}, err
	}

	nb, err := domain.NewNotebook(jc.CourseID, d.KeyConcepts, d.Analogy, d.StudyGuide)
	if err != nil {
		return batch{}, fmt.Errorf("notebook: %w", err)
	}

	return batch{
		count: 1,
		step:  "Created study notebook",
		write: func(ctx context.Context, a store.ArtifactStore) error {
			return a.CreateNotebook(ctx, nb)
		},
	}, nil
}

func produceResources(ctx context.Context, jc *JobContext) (batch, error) {
	drafts, err := jc.Generator.Resources(ctx, jc.Brief())
	if err != nil {
		return batch{}, err
	}
	if len(drafts) == 0 {
		return batch{}, emptyDraft(domain.ArtifactResources)
	}

	resources := make([]*domain.Resource, len(drafts))
	for i, d := range drafts {
		r, err := domain.NewResource(jc.CourseID, d.Title, d.Type, d.URL, d.Description, d.Provider)
		if err != nil {
			return batch{}, fmt.Errorf("resource %d: %w", i+1, err)
		}
		resources[i] = r
	}

	return batch{
		count: len(resources),
		step:  fmt.Sprintf("Created %d learning resources", len(resources)),
		write: func(ctx context.Context, a store.ArtifactStore) error {
			return a.CreateResources(ctx, resources)
		},
	}, nil
}

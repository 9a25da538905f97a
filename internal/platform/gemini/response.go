package gemini

import (
	"errors"
	"fmt"

	"github.com/phrazzld/coursegen-api/internal/generation"
)

var errEmptyList = errors.New("response contains no items")

// checkable is a decoded model response that can report structural problems.
// Field-level rules stay with the domain constructors.
type checkable interface {
	check() error
}

type chaptersResponse struct {
	Chapters []generation.ChapterDraft `json:"chapters"`
}

func (r *chaptersResponse) check() error {
	if len(r.Chapters) == 0 {
		return errEmptyList
	}
	for i, c := range r.Chapters {
		if c.EstimatedReadingTimeMinutes <= 0 {
			r.Chapters[i].EstimatedReadingTimeMinutes = 10
		}
	}
	return nil
}

type flashcardsResponse struct {
	Flashcards []generation.FlashcardDraft `json:"flashcards"`
}

func (r *flashcardsResponse) check() error {
	if len(r.Flashcards) == 0 {
		return errEmptyList
	}
	return nil
}

type questionsResponse struct {
	Questions []generation.MultipleChoiceQuestionDraft `json:"questions"`
}

func (r *questionsResponse) check() error {
	if len(r.Questions) == 0 {
		return errEmptyList
	}
	for i, q := range r.Questions {
		found := false
		for _, o := range q.Options {
			if o == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("question %d: correct answer is not among its options", i)
		}
	}
	return nil
}

type qnasResponse struct {
	QnAs []generation.QnADraft `json:"qnas"`
}

func (r *qnasResponse) check() error {
	if len(r.QnAs) == 0 {
		return errEmptyList
	}
	return nil
}

type notebookResponse struct {
	Notebook generation.NotebookDraft `json:"notebook"`
}

func (r *notebookResponse) check() error {
	if len(r.Notebook.KeyConcepts) == 0 {
		return errEmptyList
	}
	return nil
}

type resourcesResponse struct {
	Resources []generation.ResourceDraft `json:"resources"`
}

func (r *resourcesResponse) check() error {
	if len(r.Resources) == 0 {
		return errEmptyList
	}
	return nil
}

package generation

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
)

// CourseBrief is what a generator knows about the course it writes for.
type CourseBrief struct {
	CourseID   uuid.UUID
	Title      string
	Purpose    domain.CoursePurpose
	Difficulty domain.Difficulty
}

// ChapterDraft is generated chapter content.
type ChapterDraft struct {
	Title                       string `json:"title"`
	Content                     string `json:"content"`
	EstimatedReadingTimeMinutes int    `json:"estimated_reading_time_minutes"`
}

// FlashcardDraft is generated flashcard content.
type FlashcardDraft struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

// MultipleChoiceQuestionDraft is generated question content.
type MultipleChoiceQuestionDraft struct {
	Question      string            `json:"question"`
	Options       []string          `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
	Difficulty    domain.Difficulty `json:"difficulty"`
}

// QnADraft is a generated question with a written answer.
type QnADraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// NotebookDraft is the generated study summary.
type NotebookDraft struct {
	KeyConcepts []domain.KeyConcept `json:"key_concepts"`
	Analogy     string              `json:"analogy"`
	StudyGuide  string              `json:"study_guide"`
}

// ResourceDraft is a generated external resource recommendation.
type ResourceDraft struct {
	Title       string              `json:"title"`
	Type        domain.ResourceType `json:"type"`
	URL         string              `json:"url"`
	Description string              `json:"description"`
	Provider    string              `json:"provider"`
}

// ContentGenerator produces course content, one artifact kind per method.
// Implementations must honor ctx cancellation.
type ContentGenerator interface {
	Chapters(ctx context.Context, brief CourseBrief) ([]ChapterDraft, error)
	Flashcards(ctx context.Context, brief CourseBrief) ([]FlashcardDraft, error)
	MultipleChoiceQuestions(ctx context.Context, brief CourseBrief) ([]MultipleChoiceQuestionDraft, error)
	QnAs(ctx context.Context, brief CourseBrief) ([]QnADraft, error)
	Notebook(ctx context.Context, brief CourseBrief) (NotebookDraft, error)
	Resources(ctx context.Context, brief CourseBrief) ([]ResourceDraft, error)
}

// Credentials are caller-supplied provider credentials for a single run.
// They live only in memory and are never written to the job record.
type Credentials struct {
	GeminiAPIKey string
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.GeminiAPIKey == ""
}

// Resolver picks the generator for a run: the caller's own provider when
// credentials are supplied, the server default otherwise.
type Resolver struct {
	Default   ContentGenerator
	ForAPIKey func(ctx context.Context, apiKey string) (ContentGenerator, error)
}

// Resolve returns the generator for creds.
func (r Resolver) Resolve(ctx context.Context, creds Credentials) (ContentGenerator, error) {
	if creds.IsZero() || r.ForAPIKey == nil {
		if r.Default == nil {
			return nil, ErrInvalidConfig
		}
		return r.Default, nil
	}
	return r.ForAPIKey(ctx, creds.GeminiAPIKey)
}

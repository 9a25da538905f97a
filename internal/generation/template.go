package generation

import (
	"context"
	"fmt"
	"net/url"

	"github.com/phrazzld/coursegen-api/internal/domain"
)

// TemplateGenerator fills every artifact kind from fixed templates. Output
// depends only on the brief, so repeated runs produce identical content.
type TemplateGenerator struct{}

var _ ContentGenerator = TemplateGenerator{}

// NewTemplateGenerator returns the template content source.
func NewTemplateGenerator() TemplateGenerator {
	return TemplateGenerator{}
}

var chapterTemplates = []struct {
	title, body string
	minutes     int
}{
	{"Introduction to %s", "This chapter introduces the core ideas of %s and the vocabulary used throughout the course.", 15},
	{"Core Concepts of %s", "This chapter works through the central concepts of %s with worked examples.", 20},
	{"Applying %s", "This chapter applies %s to realistic problems and reviews common mistakes.", 25},
}

// Chapters implements ContentGenerator.
func (TemplateGenerator) Chapters(ctx context.Context, brief CourseBrief) ([]ChapterDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ChapterDraft, len(chapterTemplates))
	for i, t := range chapterTemplates {
		out[i] = ChapterDraft{
			Title:                       fmt.Sprintf(t.title, brief.Title),
			Content:                     fmt.Sprintf(t.body, brief.Title) + " " + purposeNote(brief.Purpose),
			EstimatedReadingTimeMinutes: t.minutes,
		}
	}
	return out, nil
}

// Flashcards implements ContentGenerator.
func (TemplateGenerator) Flashcards(ctx context.Context, brief CourseBrief) ([]FlashcardDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []FlashcardDraft{
		{
			Question:   fmt.Sprintf("What is %s?", brief.Title),
			Answer:     fmt.Sprintf("%s is the subject of this course; chapter one gives its definition.", brief.Title),
			Difficulty: domain.DifficultyBeginner,
		},
		{
			Question:   fmt.Sprintf("Name a core concept of %s.", brief.Title),
			Answer:     fmt.Sprintf("See the key concepts in the %s notebook.", brief.Title),
			Difficulty: brief.Difficulty,
		},
		{
			Question:   fmt.Sprintf("Where is %s applied?", brief.Title),
			Answer:     fmt.Sprintf("Chapter three walks through practical applications of %s.", brief.Title),
			Difficulty: brief.Difficulty,
		},
	}, nil
}

// MultipleChoiceQuestions implements ContentGenerator.
func (TemplateGenerator) MultipleChoiceQuestions(ctx context.Context, brief CourseBrief) ([]MultipleChoiceQuestionDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []MultipleChoiceQuestionDraft{
		{
			Question:      fmt.Sprintf("Which chapter introduces the vocabulary of %s?", brief.Title),
			Options:       []string{"Chapter 1", "Chapter 2", "Chapter 3", "None of them"},
			CorrectAnswer: "Chapter 1",
			Explanation:   "The introduction defines the terms used by later chapters.",
			Difficulty:    domain.DifficultyBeginner,
		},
		{
			Question: fmt.Sprintf("What is the best way to retain %s?", brief.Title),
			Options: []string{
				"Spaced review of flashcards",
				"Reading once",
				"Skipping the exercises",
				"Memorising the chapter titles",
			},
			CorrectAnswer: "Spaced review of flashcards",
			Explanation:   "Reviewing at increasing intervals moves material into long-term memory.",
			Difficulty:    brief.Difficulty,
		},
	}, nil
}

// QnAs implements ContentGenerator.
func (TemplateGenerator) QnAs(ctx context.Context, brief CourseBrief) ([]QnADraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []QnADraft{
		{
			Question: fmt.Sprintf("Why does %s matter?", brief.Title),
			Answer: fmt.Sprintf("%s gives a precise language for problems that recur across the field. %s",
				brief.Title, purposeNote(brief.Purpose)),
		},
		{
			Question: fmt.Sprintf("How should a %s learner study %s?", brief.Difficulty, brief.Title),
			Answer:   "Read the chapters in order, then alternate flashcard review with the practice questions.",
		},
	}, nil
}

// Notebook implements ContentGenerator.
func (TemplateGenerator) Notebook(ctx context.Context, brief CourseBrief) (NotebookDraft, error) {
	if err := ctx.Err(); err != nil {
		return NotebookDraft{}, err
	}
	return NotebookDraft{
		KeyConcepts: []domain.KeyConcept{
			{Term: brief.Title, Definition: fmt.Sprintf("The subject of this %s course.", brief.Difficulty)},
			{Term: "Fundamentals", Definition: fmt.Sprintf("The definitions every other idea in %s builds on.", brief.Title)},
			{Term: "Application", Definition: fmt.Sprintf("Using %s to solve a concrete problem.", brief.Title)},
		},
		Analogy:    fmt.Sprintf("Learning %s is like learning a city: first the main roads, then the side streets.", brief.Title),
		StudyGuide: "Read one chapter per session, review flashcards daily, and finish with the practice questions.",
	}, nil
}

// Resources implements ContentGenerator.
func (TemplateGenerator) Resources(ctx context.Context, brief CourseBrief) ([]ResourceDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := url.QueryEscape(brief.Title)
	return []ResourceDraft{
		{
			Title:       fmt.Sprintf("%s on Wikipedia", brief.Title),
			Type:        domain.ResourceArticle,
			URL:         "https://en.wikipedia.org/wiki/Special:Search?search=" + q,
			Description: "Encyclopedia overview with references.",
			Provider:    "Wikipedia",
		},
		{
			Title:       fmt.Sprintf("%s video lectures", brief.Title),
			Type:        domain.ResourceVideo,
			URL:         "https://www.youtube.com/results?search_query=" + q,
			Description: "Recorded lectures and walkthroughs.",
			Provider:    "YouTube",
		},
		{
			Title:       fmt.Sprintf("%s open courseware", brief.Title),
			Type:        domain.ResourceCourse,
			URL:         "https://ocw.mit.edu/search/?q=" + q,
			Description: "Free university course material.",
			Provider:    "MIT OpenCourseWare",
		},
	}, nil
}

func purposeNote(p domain.CoursePurpose) string {
	switch p {
	case domain.PurposeExam:
		return "Focus on definitions and standard results that appear in exams."
	case domain.PurposeJobInterview:
		return "Focus on explaining the ideas aloud, as an interviewer would ask."
	case domain.PurposeCodingPreparation:
		return "Focus on turning each idea into working code."
	default:
		return "Work through the examples at your own pace."
	}
}


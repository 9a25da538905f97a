package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind names the content type one pipeline stage produces.
type ArtifactKind string

// Artifact kinds in pipeline order.
const (
	ArtifactChapters   ArtifactKind = "chapters"
	ArtifactFlashcards ArtifactKind = "flashcards"
	ArtifactMCQs       ArtifactKind = "mcqs"
	ArtifactQnAs       ArtifactKind = "qnas"
	ArtifactNotebook   ArtifactKind = "notebook"
	ArtifactResources  ArtifactKind = "resources"
)

// MCQOptionCount is the number of options every multiple-choice question has.
const MCQOptionCount = 4

// ResourceType classifies an external learning resource.
type ResourceType string

// Resource types.
const (
	ResourceArticle       ResourceType = "article"
	ResourceVideo         ResourceType = "video"
	ResourceBook          ResourceType = "book"
	ResourceCourse        ResourceType = "course"
	ResourceDocumentation ResourceType = "documentation"
	ResourcePractice      ResourceType = "practice"
)

// IsValid reports whether t is a known resource type.
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceArticle, ResourceVideo, ResourceBook, ResourceCourse, ResourceDocumentation, ResourcePractice:
		return true
	default:
		return false
	}
}

// Artifact validation errors.
var (
	ErrEmptyArtifactCourseID = fmt.Errorf("%w: artifact course ID cannot be empty", ErrValidation)
	ErrEmptyArtifactField    = fmt.Errorf("%w: required artifact field is empty", ErrValidation)
	ErrInvalidChapterOrder   = fmt.Errorf("%w: chapter order must be positive", ErrValidation)
	ErrInvalidReadingTime    = fmt.Errorf("%w: reading time must be positive", ErrValidation)
	ErrInvalidMCQOptions     = fmt.Errorf("%w: multiple-choice question needs exactly 4 distinct options", ErrValidation)
	ErrInvalidCorrectAnswer  = fmt.Errorf("%w: correct answer must be one of the options", ErrValidation)
	ErrEmptyNotebookConcepts = fmt.Errorf("%w: notebook needs at least one key concept", ErrValidation)
	ErrInvalidResourceType   = fmt.Errorf("%w: invalid resource type", ErrValidation)
	ErrInvalidResourceURL    = fmt.Errorf("%w: resource URL must be absolute http(s)", ErrValidation)
)

// Chapter is an ordered reading section of a course.
type Chapter struct {
	ID                          uuid.UUID `json:"id"`
	CourseID                    uuid.UUID `json:"course_id"`
	OrderNumber                 int       `json:"order_number"`
	Title                       string    `json:"title"`
	Content                     string    `json:"content"`
	EstimatedReadingTimeMinutes int       `json:"estimated_reading_time_minutes"`
	CreatedAt                   time.Time `json:"created_at"`
}

// NewChapter creates a validated chapter.
func NewChapter(courseID uuid.UUID, order int, title, content string, readingMinutes int) (*Chapter, error) {
	c := &Chapter{
		ID:                          uuid.New(),
		CourseID:                    courseID,
		OrderNumber:                 order,
		Title:                       strings.TrimSpace(title),
		Content:                     strings.TrimSpace(content),
		EstimatedReadingTimeMinutes: readingMinutes,
		CreatedAt:                   time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the chapter fields.
func (c *Chapter) Validate() error {
	if c.CourseID == uuid.Nil {
		return ErrEmptyArtifactCourseID
	}
	if c.OrderNumber < 1 {
		return ErrInvalidChapterOrder
	}
	if c.Title == "" || c.Content == "" {
		return fmt.Errorf("%w: chapter title and content", ErrEmptyArtifactField)
	}
	if c.EstimatedReadingTimeMinutes < 1 {
		return ErrInvalidReadingTime
	}
	return nil
}

// Flashcard is a short question and answer pair for recall practice.
type Flashcard struct {
	ID         uuid.UUID  `json:"id"`
	CourseID   uuid.UUID  `json:"course_id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Difficulty Difficulty `json:"difficulty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewFlashcard creates a validated flashcard.
func NewFlashcard(courseID uuid.UUID, question, answer string, difficulty Difficulty) (*Flashcard, error) {
	f := &Flashcard{
		ID:         uuid.New(),
		CourseID:   courseID,
		Question:   strings.TrimSpace(question),
		Answer:     strings.TrimSpace(answer),
		Difficulty: difficulty,
		CreatedAt:  time.Now().UTC(),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the flashcard fields.
func (f *Flashcard) Validate() error {
	if f.CourseID == uuid.Nil {
		return ErrEmptyArtifactCourseID
	}
	if f.Question == "" || f.Answer == "" {
		return fmt.Errorf("%w: flashcard question and answer", ErrEmptyArtifactField)
	}
	if !f.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	return nil
}

// MultipleChoiceQuestion is a four-option question with an explanation.
type MultipleChoiceQuestion struct {
	ID            uuid.UUID  `json:"id"`
	CourseID      uuid.UUID  `json:"course_id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewMultipleChoiceQuestion creates a validated question.
func NewMultipleChoiceQuestion(
	courseID uuid.UUID,
	question string,
	options []string,
	correctAnswer, explanation string,
	difficulty Difficulty,
) (*MultipleChoiceQuestion, error) {
	opts := make([]string, len(options))
	for i, o := range options {
		opts[i] = strings.TrimSpace(o)
	}
	q := &MultipleChoiceQuestion{
		ID:            uuid.New(),
		CourseID:      courseID,
		Question:      strings.TrimSpace(question),
		Options:       opts,
		CorrectAnswer: strings.TrimSpace(correctAnswer),
		Explanation:   strings.TrimSpace(explanation),
		Difficulty:    difficulty,
		CreatedAt:     time.Now().UTC(),
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the question fields.
func (q *MultipleChoiceQuestion) Validate() error {
	if q.CourseID == uuid.Nil {
		return ErrEmptyArtifactCourseID
	}
	if q.Question == "" || q.Explanation == "" {
		return fmt.Errorf("%w: question and explanation", ErrEmptyArtifactField)
	}
	if len(q.Options) != MCQOptionCount {
		return ErrInvalidMCQOptions
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if o == "" {
			return ErrInvalidMCQOptions
		}
		if _, dup := seen[o]; dup {
			return ErrInvalidMCQOptions
		}
		seen[o] = struct{}{}
	}
	if _, ok := seen[q.CorrectAnswer]; !ok {
		return ErrInvalidCorrectAnswer
	}
	if !q.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	return nil
}

// QnA is a free-form question with a longer written answer.
type QnA struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// NewQnA creates a validated question and answer pair.
func NewQnA(courseID uuid.UUID, question, answer string) (*QnA, error) {
	q := &QnA{
		ID:        uuid.New(),
		CourseID:  courseID,
		Question:  strings.TrimSpace(question),
		Answer:    strings.TrimSpace(answer),
		CreatedAt: time.Now().UTC(),
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate checks the pair.
func (q *QnA) Validate() error {
	if q.CourseID == uuid.Nil {
		return ErrEmptyArtifactCourseID
	}
	if q.Question == "" || q.Answer == "" {
		return fmt.Errorf("%w: qna question and answer", ErrEmptyArtifactField)
	}
	return nil
}

// KeyConcept is a term and its definition inside a notebook.
type KeyConcept struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Notebook is the single study summary of a course.
type Notebook struct {
	ID          uuid.UUID    `json:"id"`
	CourseID    uuid.UUID    `json:"course_id"`
	KeyConcepts []KeyConcept `json:"key_concepts"`
	Analogy     string       `json:"analogy"`
	StudyGuide  string       `json:"study_guide"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewNotebook creates a validated notebook.
func NewNotebook(courseID uuid.UUID, concepts []KeyConcept, analogy, studyGuide string) (*Notebook, error) {
	kc := make([]KeyConcept, len(concepts))
	for i, c := range concepts {
		kc[i] = KeyConcept{Term: strings.TrimSpace(c.Term), Definition: strings.TrimSpace(c.Definition)}
	}
	n := &Notebook{
		ID:          uuid.New(),
		CourseID:    courseID,
		KeyConcepts: kc,
		Analogy:     strings.TrimSpace(analogy),
		StudyGuide:  strings.TrimSpace(studyGuide),
		CreatedAt:   time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks the notebook fields.
func (n *Notebook) Validate() error {
	if n.CourseID == uuid.Nil {
		return ErrEmptyArtifactCourseID
	}
	if len(n.KeyConcepts) == 0 {
		return ErrEmptyNotebookConcepts
	}
	for _, c := range n.KeyConcepts {
		if c.Term == "" || c.Definition == "" {
			return fmt.Errorf("%w: key concept term and definition", ErrEmptyArtifactField)
		}
	}
	if n.Analogy == "" || n.StudyGuide == "" {
		return fmt.Errorf("%w: notebook analogy and study guide", ErrEmptyArtifactField)
	}
	return nil
}

// Resource is an external link recommended alongside the course.
type Resource struct {
	ID          uuid.UUID    `json:"id"`
	CourseID    uuid.UUID    `json:"course_id"`
	Title       string       `json:"title"`
	Type        ResourceType `json:"type"`
	URL         string       `json:"url"`
	Description string       `json:"description"`
	Provider    string       `json:"provider"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewResource creates a validated resource.
func NewResource(courseID uuid.UUID, title string, typ ResourceType, rawURL, description, provider string) (*Resource, error) {
	r := &Resource{
		ID:          uuid.New(),
		CourseID:    courseID,
		Title:       strings.TrimSpace(title),
		Type:        typ,
		URL:         strings.TrimSpace(rawURL),
		Description: strings.TrimSpace(description),
		Provider:    strings.TrimSpace(provider),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the resource fields.
func (r *Resource) Validate() error {
	if r.CourseID == uuid.Nil {
		return ErrEmptyArtifactCourseID
	}
	if r.Title == "" || r.Provider == "" {
		return fmt.Errorf("%w: resource title and provider", ErrEmptyArtifactField)
	}
	if !r.Type.IsValid() {
		return ErrInvalidResourceType
	}
	u, err := url.Parse(r.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidResourceURL
	}
	return nil
}

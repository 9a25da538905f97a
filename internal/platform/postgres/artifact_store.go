package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/platform/logger"
	"github.com/phrazzld/coursegen-api/internal/store"
)

// PostgresArtifactStore implements store.ArtifactStore on PostgreSQL. Every
// Create method issues a single multi-row INSERT.
type PostgresArtifactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ArtifactStore = (*PostgresArtifactStore)(nil)

// NewPostgresArtifactStore creates an artifact store on db.
func NewPostgresArtifactStore(db store.DBTX, logger *slog.Logger) *PostgresArtifactStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresArtifactStore{
		db:     db,
		logger: logger.With(slog.String("component", "artifact_store")),
	}
}

type validatable interface {
	Validate() error
}

func validateAll[T validatable](items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: item %d: %v", store.ErrInvalidEntity, i, err)
		}
	}
	return nil
}

// insertRows writes rows into table with one statement.
func (s *PostgresArtifactStore) insertRows(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	var b strings.Builder
	args := make([]any, 0, len(rows)*len(columns))
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", len(args)+j+1)
		}
		b.WriteByte(')')
		args = append(args, row...)
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to insert artifacts",
			slog.String("table", table),
			slog.Int("count", len(rows)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// CreateChapters implements store.ArtifactStore.
func (s *PostgresArtifactStore) CreateChapters(ctx context.Context, chapters []*domain.Chapter) error {
	if err := validateAll(chapters); err != nil {
		return err
	}
	rows := make([][]any, len(chapters))
	for i, c := range chapters {
		rows[i] = []any{c.ID, c.CourseID, c.OrderNumber, c.Title, c.Content, c.EstimatedReadingTimeMinutes, c.CreatedAt}
	}
	err := s.insertRows(ctx, "chapters",
		[]string{"id", "course_id", "order_number", "title", "content", "estimated_reading_time_minutes", "created_at"},
		rows)
	return MapError(err)
}

// CreateFlashcards implements store.ArtifactStore.
func (s *PostgresArtifactStore) CreateFlashcards(ctx context.Context, flashcards []*domain.Flashcard) error {
	if err := validateAll(flashcards); err != nil {
		return err
	}
	rows := make([][]any, len(flashcards))
	for i, f := range flashcards {
		rows[i] = []any{f.ID, f.CourseID, f.Question, f.Answer, string(f.Difficulty), f.CreatedAt}
	}
	err := s.insertRows(ctx, "flashcards",
		[]string{"id", "course_id", "question", "answer", "difficulty", "created_at"},
		rows)
	return MapError(err)
}

// CreateMultipleChoiceQuestions implements store.ArtifactStore.
func (s *PostgresArtifactStore) CreateMultipleChoiceQuestions(
	ctx context.Context,
	questions []*domain.MultipleChoiceQuestion,
) error {
	if err := validateAll(questions); err != nil {
		return err
	}
	rows := make([][]any, len(questions))
	for i, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("%w: options: %v", store.ErrInvalidEntity, err)
		}
		rows[i] = []any{q.ID, q.CourseID, q.Question, options, q.CorrectAnswer, q.Explanation, string(q.Difficulty), q.CreatedAt}
	}
	err := s.insertRows(ctx, "multiple_choice_questions",
		[]string{"id", "course_id", "question", "options", "correct_answer", "explanation", "difficulty", "created_at"},
		rows)
	return MapError(err)
}

// CreateQnAs implements store.ArtifactStore.
func (s *PostgresArtifactStore) CreateQnAs(ctx context.Context, qnas []*domain.QnA) error {
	if err := validateAll(qnas); err != nil {
		return err
	}
	rows := make([][]any, len(qnas))
	for i, q := range qnas {
		rows[i] = []any{q.ID, q.CourseID, q.Question, q.Answer, q.CreatedAt}
	}
	err := s.insertRows(ctx, "qnas",
		[]string{"id", "course_id", "question", "answer", "created_at"},
		rows)
	return MapError(err)
}

// CreateNotebook implements store.ArtifactStore.
func (s *PostgresArtifactStore) CreateNotebook(ctx context.Context, notebook *domain.Notebook) error {
	if err := notebook.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	concepts, err := json.Marshal(notebook.KeyConcepts)
	if err != nil {
		return fmt.Errorf("%w: key concepts: %v", store.ErrInvalidEntity, err)
	}
	err = s.insertRows(ctx, "notebooks",
		[]string{"id", "course_id", "key_concepts", "analogy", "study_guide", "created_at"},
		[][]any{{notebook.ID, notebook.CourseID, concepts, notebook.Analogy, notebook.StudyGuide, notebook.CreatedAt}})
	if violatesConstraint(err, constraintNotebookPerCourse) {
		return MapUniqueViolation(err, store.ErrNotebookExists)
	}
	return MapError(err)
}

// CreateResources implements store.ArtifactStore.
func (s *PostgresArtifactStore) CreateResources(ctx context.Context, resources []*domain.Resource) error {
	if err := validateAll(resources); err != nil {
		return err
	}
	rows := make([][]any, len(resources))
	for i, r := range resources {
		rows[i] = []any{r.ID, r.CourseID, r.Title, string(r.Type), r.URL, r.Description, r.Provider, r.CreatedAt}
	}
	err := s.insertRows(ctx, "resources",
		[]string{"id", "course_id", "title", "type", "url", "description", "provider", "created_at"},
		rows)
	return MapError(err)
}

// CountByCourse implements store.ArtifactStore.
func (s *PostgresArtifactStore) CountByCourse(ctx context.Context, courseID uuid.UUID) (store.ArtifactCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM chapters WHERE course_id = $1),
			(SELECT COUNT(*) FROM flashcards WHERE course_id = $1),
			(SELECT COUNT(*) FROM multiple_choice_questions WHERE course_id = $1),
			(SELECT COUNT(*) FROM qnas WHERE course_id = $1),
			(SELECT COUNT(*) FROM notebooks WHERE course_id = $1),
			(SELECT COUNT(*) FROM resources WHERE course_id = $1)
	`
	var c store.ArtifactCounts
	err := s.db.QueryRowContext(ctx, query, courseID).Scan(
		&c.Chapters,
		&c.Flashcards,
		&c.MultipleChoiceQuestions,
		&c.QnAs,
		&c.Notebooks,
		&c.Resources,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count artifacts",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()))
		return store.ArtifactCounts{}, MapError(err)
	}
	return c, nil
}

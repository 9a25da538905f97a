package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewChapter(t *testing.T) {
	t.Parallel()
	courseID := uuid.New()

	c, err := NewChapter(courseID, 1, "Introduction", "Body", 8)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if c.ID == uuid.Nil || c.CourseID != courseID {
		t.Error("Expected IDs to be set")
	}

	if _, err := NewChapter(courseID, 0, "Intro", "Body", 8); !errors.Is(err, ErrInvalidChapterOrder) {
		t.Errorf("Expected ErrInvalidChapterOrder, got %v", err)
	}
	if _, err := NewChapter(courseID, 1, "", "Body", 8); !errors.Is(err, ErrEmptyArtifactField) {
		t.Errorf("Expected ErrEmptyArtifactField, got %v", err)
	}
	if _, err := NewChapter(courseID, 1, "Intro", "Body", 0); !errors.Is(err, ErrInvalidReadingTime) {
		t.Errorf("Expected ErrInvalidReadingTime, got %v", err)
	}
	if _, err := NewChapter(uuid.Nil, 1, "Intro", "Body", 5); !errors.Is(err, ErrEmptyArtifactCourseID) {
		t.Errorf("Expected ErrEmptyArtifactCourseID, got %v", err)
	}
}

func TestNewMultipleChoiceQuestion(t *testing.T) {
	t.Parallel()
	courseID := uuid.New()
	options := []string{"A", "B", "C", "D"}

	tests := []struct {
		name    string
		options []string
		correct string
		wantErr error
	}{
		{"valid", options, "B", nil},
		{"three options", []string{"A", "B", "C"}, "A", ErrInvalidMCQOptions},
		{"duplicate option", []string{"A", "A", "C", "D"}, "A", ErrInvalidMCQOptions},
		{"blank option", []string{"A", " ", "C", "D"}, "A", ErrInvalidMCQOptions},
		{"answer not an option", options, "E", ErrInvalidCorrectAnswer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NewMultipleChoiceQuestion(courseID, "Q?", tc.options, tc.correct, "Because", DifficultyAdvanced)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if len(q.Options) != MCQOptionCount {
					t.Errorf("Expected %d options, got %d", MCQOptionCount, len(q.Options))
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewNotebook(t *testing.T) {
	t.Parallel()
	courseID := uuid.New()
	concepts := []KeyConcept{{Term: "Vertex", Definition: "A node"}}

	if _, err := NewNotebook(courseID, concepts, "Like a map", "Read chapter 1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := NewNotebook(courseID, nil, "Like a map", "Read"); !errors.Is(err, ErrEmptyNotebookConcepts) {
		t.Errorf("Expected ErrEmptyNotebookConcepts, got %v", err)
	}
	if _, err := NewNotebook(courseID, []KeyConcept{{Term: "Vertex"}}, "Like a map", "Read"); !errors.Is(err, ErrEmptyArtifactField) {
		t.Errorf("Expected ErrEmptyArtifactField, got %v", err)
	}
}

func TestNewResource(t *testing.T) {
	t.Parallel()
	courseID := uuid.New()

	if _, err := NewResource(courseID, "Docs", ResourceDocumentation, "https://go.dev/doc", "Official docs", "Go"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := NewResource(courseID, "Docs", ResourceType("podcast"), "https://go.dev", "", "Go"); !errors.Is(err, ErrInvalidResourceType) {
		t.Errorf("Expected ErrInvalidResourceType, got %v", err)
	}
	for _, raw := range []string{"go.dev/doc", "ftp://go.dev", "https://"} {
		if _, err := NewResource(courseID, "Docs", ResourceArticle, raw, "", "Go"); !errors.Is(err, ErrInvalidResourceURL) {
			t.Errorf("Expected ErrInvalidResourceURL for %q, got %v", raw, err)
		}
	}
}

func TestNewActivityLogEntry(t *testing.T) {
	t.Parallel()
	courseID := uuid.New()

	e, err := NewActivityLogEntry(AgentCourseGenerator, uuid.New(), &courseID, LogLevelInfo, "done", map[string]any{"k": 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if e.CourseID == nil || *e.CourseID != courseID {
		t.Error("Expected course ID to be kept")
	}

	if _, err := NewActivityLogEntry("", uuid.New(), nil, LogLevelInfo, "m", nil); !errors.Is(err, ErrEmptyAgentName) {
		t.Errorf("Expected ErrEmptyAgentName, got %v", err)
	}
	if _, err := NewActivityLogEntry("a", uuid.New(), nil, LogLevel("debug"), "m", nil); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("Expected ErrInvalidLogLevel, got %v", err)
	}
}

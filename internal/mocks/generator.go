package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/generation"
)

// MockContentGenerator implements generation.ContentGenerator for testing.
// Calls are delegated to Base (the template generator by default) unless an
// error is registered for the artifact kind or BeforeFn returns one.
type MockContentGenerator struct {
	// Base produces content for calls that are not failed.
	Base generation.ContentGenerator

	// BeforeFn runs before every call; a non-nil error fails that call.
	BeforeFn func(ctx context.Context, kind domain.ArtifactKind) error

	mu     sync.Mutex
	errs   map[domain.ArtifactKind]error
	calls  []domain.ArtifactKind
	briefs []generation.CourseBrief
}

var _ generation.ContentGenerator = (*MockContentGenerator)(nil)

// NewMockContentGenerator returns a generator backed by template content.
func NewMockContentGenerator() *MockContentGenerator {
	return &MockContentGenerator{Base: generation.NewTemplateGenerator()}
}

// MockContentGeneratorFailingAt returns a generator whose kind stage fails with err.
func MockContentGeneratorFailingAt(kind domain.ArtifactKind, err error) *MockContentGenerator {
	m := NewMockContentGenerator()
	m.FailOn(kind, err)
	return m
}

// FailOn makes every call for kind return err. A nil err clears it.
func (m *MockContentGenerator) FailOn(kind domain.ArtifactKind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs == nil {
		m.errs = make(map[domain.ArtifactKind]error)
	}
	if err == nil {
		delete(m.errs, kind)
		return
	}
	m.errs[kind] = err
}

// Calls returns the artifact kinds requested so far, in call order.
func (m *MockContentGenerator) Calls() []domain.ArtifactKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ArtifactKind(nil), m.calls...)
}

// Briefs returns the briefs passed to each call.
func (m *MockContentGenerator) Briefs() []generation.CourseBrief {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.CourseBrief(nil), m.briefs...)
}

// Reset clears the call tracking state.
func (m *MockContentGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.briefs = nil
}

func (m *MockContentGenerator) record(ctx context.Context, kind domain.ArtifactKind, brief generation.CourseBrief) error {
	m.mu.Lock()
	m.calls = append(m.calls, kind)
	m.briefs = append(m.briefs, brief)
	err := m.errs[kind]
	m.mu.Unlock()

	if m.BeforeFn != nil {
		if hookErr := m.BeforeFn(ctx, kind); hookErr != nil {
			return hookErr
		}
	}
	return err
}

func (m *MockContentGenerator) base() generation.ContentGenerator {
	if m.Base == nil {
		return generation.NewTemplateGenerator()
	}
	return m.Base
}

// Chapters implements generation.ContentGenerator.
func (m *MockContentGenerator) Chapters(ctx context.Context, brief generation.CourseBrief) ([]generation.ChapterDraft, error) {
	if err := m.record(ctx, domain.ArtifactChapters, brief); err != nil {
		return nil, err
	}
	return m.base().Chapters(ctx, brief)
}

// Flashcards implements generation.ContentGenerator.
func (m *MockContentGenerator) Flashcards(ctx context.Context, brief generation.CourseBrief) ([]generation.FlashcardDraft, error) {
	if err := m.record(ctx, domain.ArtifactFlashcards, brief); err != nil {
		return nil, err
	}
	return m.base().Flashcards(ctx, brief)
}

// MultipleChoiceQuestions implements generation.ContentGenerator.
func (m *MockContentGenerator) MultipleChoiceQuestions(
	ctx context.Context,
	brief generation.CourseBrief,
) ([]generation.MultipleChoiceQuestionDraft, error) {
	if err := m.record(ctx, domain.ArtifactMCQs, brief); err != nil {
		return nil, err
	}
	return m.base().MultipleChoiceQuestions(ctx, brief)
}

// QnAs implements generation.ContentGenerator.
func (m *MockContentGenerator) QnAs(ctx context.Context, brief generation.CourseBrief) ([]generation.QnADraft, error) {
	if err := m.record(ctx, domain.ArtifactQnAs, brief); err != nil {
		return nil, err
	}
	return m.base().QnAs(ctx, brief)
}

// Notebook implements generation.ContentGenerator.
func (m *MockContentGenerator) Notebook(ctx context.Context, brief generation.CourseBrief) (generation.NotebookDraft, error) {
	if err := m.record(ctx, domain.ArtifactNotebook, brief); err != nil {
		return generation.NotebookDraft{}, err
	}
	return m.base().Notebook(ctx, brief)
}

// Resources implements generation.ContentGenerator.
func (m *MockContentGenerator) Resources(ctx context.Context, brief generation.CourseBrief) ([]generation.ResourceDraft, error) {
	if err := m.record(ctx, domain.ArtifactResources, brief); err != nil {
		return nil, err
	}
	return m.base().Resources(ctx, brief)
}

package gemini

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/phrazzld/coursegen-api/internal/config"
	"github.com/phrazzld/coursegen-api/internal/domain"
	"github.com/phrazzld/coursegen-api/internal/generation"
	"google.golang.org/genai"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Requested item counts per artifact kind.
var itemCounts = map[domain.ArtifactKind]int{
	domain.ArtifactChapters:   3,
	domain.ArtifactFlashcards: 3,
	domain.ArtifactMCQs:       2,
	domain.ArtifactQnAs:       2,
	domain.ArtifactNotebook:   1,
	domain.ArtifactResources:  3,
}

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
)

// contentModel is the part of genai.Models the generator uses.
type contentModel interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator produces course content with a Gemini model.
type Generator struct {
	logger     *slog.Logger
	models     contentModel
	model      string
	maxRetries int
	baseDelay  time.Duration
	prompts    *template.Template

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ generation.ContentGenerator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed generator from cfg.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg)
}

// NewFactory returns a constructor for generators that use a caller's own API
// key with the server's model and retry settings.
func NewFactory(
	logger *slog.Logger,
	cfg config.LLMConfig,
) func(ctx context.Context, apiKey string) (generation.ContentGenerator, error) {
	return func(ctx context.Context, apiKey string) (generation.ContentGenerator, error) {
		c := cfg
		c.GeminiAPIKey = apiKey
		gen, err := NewGenerator(ctx, logger, c)
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
}

func newGenerator(logger *slog.Logger, models contentModel, cfg config.LLMConfig) (*Generator, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	prompts, err := template.ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt templates: %v", generation.ErrInvalidConfig, err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", slog.Int("max_retries", defaultMaxRetries))
		maxRetries = defaultMaxRetries
	}
	baseDelay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if baseDelay < time.Second {
		logger.Warn("invalid retry delay value, using default", slog.Duration("base_delay", defaultBaseDelay))
		baseDelay = defaultBaseDelay
	}

	return &Generator{
		logger:     logger.With(slog.String("component", "gemini_generator"), slog.String("model", cfg.ModelName)),
		models:     models,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		prompts:    prompts,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

type promptData struct {
	Title      string
	Purpose    string
	Difficulty domain.Difficulty
	Count      int
}

func (g *Generator) createPrompt(kind domain.ArtifactKind, brief generation.CourseBrief) (string, error) {
	if strings.TrimSpace(brief.Title) == "" {
		return "", fmt.Errorf("%w: course title cannot be empty", generation.ErrGenerationFailed)
	}

	data := promptData{
		Title:      brief.Title,
		Purpose:    strings.ReplaceAll(string(brief.Purpose), "_", " "),
		Difficulty: brief.Difficulty,
		Count:      itemCounts[kind],
	}

	var buf bytes.Buffer
	if err := g.prompts.ExecuteTemplate(&buf, string(kind)+".tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// Chapters implements generation.ContentGenerator.
func (g *Generator) Chapters(ctx context.Context, brief generation.CourseBrief) ([]generation.ChapterDraft, error) {
	var out chaptersResponse
	if err := g.generate(ctx, domain.ArtifactChapters, brief, &out); err != nil {
		return nil, err
	}
	return out.Chapters, nil
}

// Flashcards implements generation.ContentGenerator.
func (g *Generator) Flashcards(ctx context.Context, brief generation.CourseBrief) ([]generation.FlashcardDraft, error) {
	var out flashcardsResponse
	if err := g.generate(ctx, domain.ArtifactFlashcards, brief, &out); err != nil {
		return nil, err
	}
	return out.Flashcards, nil
}

// MultipleChoiceQuestions implements generation.ContentGenerator.
func (g *Generator) MultipleChoiceQuestions(
	ctx context.Context,
	brief generation.CourseBrief,
) ([]generation.MultipleChoiceQuestionDraft, error) {
	var out questionsResponse
	if err := g.generate(ctx, domain.ArtifactMCQs, brief, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// QnAs implements generation.ContentGenerator.
func (g *Generator) QnAs(ctx context.Context, brief generation.CourseBrief) ([]generation.QnADraft, error) {
	var out qnasResponse
	if err := g.generate(ctx, domain.ArtifactQnAs, brief, &out); err != nil {
		return nil, err
	}
	return out.QnAs, nil
}

// Notebook implements generation.ContentGenerator.
func (g *Generator) Notebook(ctx context.Context, brief generation.CourseBrief) (generation.NotebookDraft, error) {
	var out notebookResponse
	if err := g.generate(ctx, domain.ArtifactNotebook, brief, &out); err != nil {
		return generation.NotebookDraft{}, err
	}
	return out.Notebook, nil
}

// Resources implements generation.ContentGenerator.
func (g *Generator) Resources(ctx context.Context, brief generation.CourseBrief) ([]generation.ResourceDraft, error) {
	var out resourcesResponse
	if err := g.generate(ctx, domain.ArtifactResources, brief, &out); err != nil {
		return nil, err
	}
	return out.Resources, nil
}

func (g *Generator) generate(ctx context.Context, kind domain.ArtifactKind, brief generation.CourseBrief, out checkable) error {
	log := g.logger.With(slog.String("kind", string(kind)), slog.String("course_id", brief.CourseID.String()))

	prompt, err := g.createPrompt(kind, brief)
	if err != nil {
		return err
	}

	if err := g.callWithRetry(ctx, log, prompt, out); err != nil {
		return err
	}

	if err := out.check(); err != nil {
		log.WarnContext(ctx, "model returned unusable content", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", generation.ErrInvalidResponse, kind, err)
	}
	return nil
}

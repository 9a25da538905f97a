package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/phrazzld/coursegen-api/internal/generation"
	"google.golang.org/genai"
)

// callWithRetry sends prompt to the model and decodes the JSON reply into out.
// Transient failures are retried up to maxRetries times with exponential
// backoff and jitter; blocked or malformed responses are returned at once.
func (g *Generator) callWithRetry(ctx context.Context, log *slog.Logger, prompt string, out any) error {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		log.DebugContext(ctx, "making Gemini API call",
			slog.Int("attempt", attemptNum),
			slog.Int("max_attempts", g.maxRetries+1))

		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err == nil {
			err = decodeResponse(resp, out)
			if err == nil {
				log.InfoContext(ctx, "Gemini API call successful", slog.Int("attempt", attemptNum))
				return nil
			}
		}

		log.ErrorContext(ctx, "Gemini API call failed",
			slog.Int("attempt", attemptNum),
			slog.String("error", err.Error()))

		if errors.Is(err, generation.ErrContentBlocked) || errors.Is(err, generation.ErrInvalidResponse) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
		if attempt >= g.maxRetries {
			log.WarnContext(ctx, "maximum retry attempts reached", slog.Int("max_retries", g.maxRetries))
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, g.maxRetries, err)
		}

		delay := g.backoff(attempt)
		log.InfoContext(ctx, "retrying after delay",
			slog.Int("attempt", attemptNum),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			log.WarnContext(ctx, "API call cancelled during retry delay", slog.Int("attempt", attemptNum))
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns baseDelay * 2^attempt scaled by a jitter factor in [0.5, 1).
func (g *Generator) backoff(attempt int) time.Duration {
	g.rngMu.Lock()
	jitter := 0.5 + g.rng.Float64()*0.5
	g.rngMu.Unlock()
	return time.Duration(float64(g.baseDelay) * math.Pow(2, float64(attempt)) * jitter)
}

func decodeResponse(resp *genai.GenerateContentResponse, out any) error {
	if resp == nil {
		return fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	raw := strings.TrimSpace(text.String())
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "```"), "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), out); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	return nil
}

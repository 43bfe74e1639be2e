package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"smart-blog-api/internal/genai"
	"smart-blog-api/internal/metrics"
	"smart-blog-api/internal/model"
	"smart-blog-api/pkg/apierror"
)

var prompts = map[model.AIAction]string{
	model.AIActionSummary: "Write a short summary of the following blog text. Return only the summary, nothing else.\n\nText:\n",
	model.AIActionGrammar: "Fix the grammar and spelling in the following text. Return only the corrected text, nothing else.\n\nText:\n",
}

var errEmptyStream = errors.New("stream ended before any text")

// GenerationMode says whether a Generation is forwarded chunk by chunk or
// was produced in one piece by the fallback call.
type GenerationMode int

const (
	GenerationStreamed GenerationMode = iota + 1
	GenerationBuffered
)

// Generation is the result of a successful Generate call. A streamed
// generation holds the already-received first chunk plus the open stream;
// a buffered one holds the whole text from the fallback call.
type Generation struct {
	Mode GenerationMode

	first  string
	stream *genai.TextStream
	text   string
}

// Each hands every chunk to yield in order. A streamed generation stops at
// the first upstream error, yield error or context cancellation.
func (g *Generation) Each(ctx context.Context, yield func(chunk string) error) error {
	if g.Mode == GenerationBuffered {
		return yield(g.text)
	}

	if err := yield(g.first); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := g.stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := yield(chunk); err != nil {
			return err
		}
	}
}

// Close releases the upstream stream, if any. It is safe on buffered
// generations.
func (g *Generation) Close() error {
	if g.stream != nil {
		return g.stream.Close()
	}
	return nil
}

type AIService struct {
	provider        genai.Provider
	configured      bool
	fallbackTimeout time.Duration
}

// NewAIService returns a service that generates through provider. When
// configured is false every Generate call is rejected without reaching the
// provider. A non-positive fallbackTimeout means 60s.
func NewAIService(provider genai.Provider, configured bool, fallbackTimeout time.Duration) *AIService {
	if fallbackTimeout <= 0 {
		fallbackTimeout = 60 * time.Second
	}
	return &AIService{provider: provider, configured: configured, fallbackTimeout: fallbackTimeout}
}

// Generate tries a streaming call first and commits to it only once a
// non-empty chunk has arrived. If no chunk arrives it makes exactly one
// non-streaming call; if that fails too the second error is returned.
func (s *AIService) Generate(ctx context.Context, req model.GenerateRequest) (*Generation, error) {
	if !s.configured {
		return nil, apierror.BadRequest("Gemini API key not set. Add GEMINI_API_KEY to your .env file.", "")
	}

	template, ok := prompts[req.Action]
	if !ok {
		return nil, apierror.BadRequest("action must be 'summary' or 'grammar'", string(req.Action))
	}
	prompt := template + req.Text
	action := string(req.Action)

	first, stream, err := s.openStream(ctx, prompt)
	if err == nil {
		metrics.RecordGeneration(action, metrics.OutcomeStream)
		return &Generation{Mode: GenerationStreamed, first: first, stream: stream}, nil
	}

	slog.Warn("ai stream failed before first chunk, falling back",
		"action", action, "rate_limited", isRateLimited(err), "error", err)

	fallbackCtx, cancel := context.WithTimeout(ctx, s.fallbackTimeout)
	defer cancel()

	text, err := s.provider.Complete(fallbackCtx, prompt)
	if err != nil {
		metrics.RecordGeneration(action, metrics.OutcomeFailed)
		slog.Error("ai fallback failed", "action", action, "error", err)
		return nil, apierror.Internal(err.Error())
	}

	metrics.RecordGeneration(action, metrics.OutcomeFallback)
	return &Generation{Mode: GenerationBuffered, text: text}, nil
}

func (s *AIService) openStream(ctx context.Context, prompt string) (string, *genai.TextStream, error) {
	stream, err := s.provider.Stream(ctx, prompt)
	if err != nil {
		return "", nil, err
	}

	first, err := stream.Next()
	if err != nil {
		_ = stream.Close()
		if errors.Is(err, io.EOF) {
			err = errEmptyStream
		}
		return "", nil, err
	}

	return first, stream, nil
}

func isRateLimited(err error) bool {
	var providerErr *genai.ProviderError
	return errors.As(err, &providerErr) && providerErr.IsRateLimited()
}

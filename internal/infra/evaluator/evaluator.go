// Package evaluator implements the LLM Evaluator (spec.md §4.5): a
// batched per-source call to an external LLM provider that returns a
// structured per-item evaluation. Grounded on the teacher's
// internal/infra/summarizer package, repurposed from free-text
// summarization to the structured evaluation contract.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Evaluator submits one source group's surviving candidates to the LLM
// and returns the parsed per-item evaluations.
type Evaluator interface {
	Evaluate(ctx context.Context, sourceTitle string, articles []entity.Article) ([]entity.Evaluation, error)
}

// NewEvaluator selects a backend by provider name ("anthropic" or
// "openai"), per the AI_PROVIDER environment variable (spec.md §6).
func NewEvaluator(provider, apiKey, model, summaryLanguage string) (Evaluator, error) {
	switch provider {
	case "openai":
		return NewOpenAIEvaluator(apiKey, model, summaryLanguage), nil
	case "anthropic", "":
		return NewClaudeEvaluator(apiKey, model, summaryLanguage), nil
	default:
		return nil, &entity.ConfigError{Reason: fmt.Sprintf("unknown AI_PROVIDER %q", provider)}
	}
}

// ClaudeEvaluator implements Evaluator via the Anthropic API, grounded on
// internal/infra/summarizer/claude.go's circuit-breaker/retry wiring.
type ClaudeEvaluator struct {
	client          anthropic.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	model           string
	summaryLanguage string
}

// NewClaudeEvaluator builds a ClaudeEvaluator. model defaults to the
// teacher's configured Sonnet model when empty.
func NewClaudeEvaluator(apiKey, model, summaryLanguage string) *ClaudeEvaluator {
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	if summaryLanguage == "" {
		summaryLanguage = "korean"
	}
	return &ClaudeEvaluator{
		client:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMEvaluatorConfig()),
		retryConfig:     retry.LLMEvaluatorConfig(),
		model:           model,
		summaryLanguage: summaryLanguage,
	}
}

// Evaluate submits articles as a single batched request and parses the
// response per spec.md §4.5.
func (c *ClaudeEvaluator) Evaluate(ctx context.Context, sourceTitle string, articles []entity.Article) ([]entity.Evaluation, error) {
	items := itemsFromArticles(articles)
	prompt := systemPrompt(c.summaryLanguage)
	content := buildUserContent(items)

	var raw string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doEvaluate(ctx, prompt, content)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("llm evaluator circuit breaker open", slog.String("source", sourceTitle))
			}
			return err
		}
		raw = result.(string)
		return nil
	})
	if retryErr != nil {
		slog.Warn("llm evaluation failed", slog.String("source", sourceTitle), slog.Any("error", retryErr))
		return nil, nil
	}

	evaluations, err := parseResponse(raw)
	if err != nil {
		slog.Warn("llm response parse failed", slog.String("source", sourceTitle), slog.Any("error", err))
		return nil, nil
	}
	return evaluations, nil
}

func (c *ClaudeEvaluator) doEvaluate(ctx context.Context, prompt, content string) (string, error) {
	requestID := uuid.New().String()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		System:    []anthropic.TextBlockParam{{Text: prompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		slog.Warn("claude evaluator request failed", slog.String("request_id", requestID), slog.Any("error", err))
		return "", err
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude evaluator returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude evaluator returned unexpected content type")
	}
	return textBlock.Text, nil
}

// OpenAIEvaluator implements Evaluator via the OpenAI chat completions
// API, grounded on internal/infra/summarizer/openai.go.
type OpenAIEvaluator struct {
	client          *openai.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	model           string
	summaryLanguage string
}

// NewOpenAIEvaluator builds an OpenAIEvaluator.
func NewOpenAIEvaluator(apiKey, model, summaryLanguage string) *OpenAIEvaluator {
	if model == "" {
		model = openai.GPT4oMini
	}
	if summaryLanguage == "" {
		summaryLanguage = "korean"
	}
	return &OpenAIEvaluator{
		client:          openai.NewClient(apiKey),
		circuitBreaker:  circuitbreaker.New(circuitbreaker.LLMEvaluatorConfig()),
		retryConfig:     retry.LLMEvaluatorConfig(),
		model:           model,
		summaryLanguage: summaryLanguage,
	}
}

// Evaluate submits articles as a single batched chat completion request.
func (o *OpenAIEvaluator) Evaluate(ctx context.Context, sourceTitle string, articles []entity.Article) ([]entity.Evaluation, error) {
	items := itemsFromArticles(articles)
	prompt := systemPrompt(o.summaryLanguage)
	content := buildUserContent(items)

	var raw string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doEvaluate(ctx, prompt, content)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("llm evaluator circuit breaker open", slog.String("source", sourceTitle))
			}
			return err
		}
		raw = result.(string)
		return nil
	})
	if retryErr != nil {
		slog.Warn("llm evaluation failed", slog.String("source", sourceTitle), slog.Any("error", retryErr))
		return nil, nil
	}

	evaluations, err := parseResponse(raw)
	if err != nil {
		slog.Warn("llm response parse failed", slog.String("source", sourceTitle), slog.Any("error", err))
		return nil, nil
	}
	return evaluations, nil
}

func (o *OpenAIEvaluator) doEvaluate(ctx context.Context, prompt, content string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai evaluator returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// PacedEvaluator wraps an Evaluator with the ≥2s inter-batch rate limit
// spec.md §4.5/§5 mandates between source groups, grounded on
// internal/infra/notifier/ratelimit.go's token-bucket wrapper.
type PacedEvaluator struct {
	inner   Evaluator
	limiter *rate.Limiter
}

// NewPacedEvaluator wraps inner with a limiter allowing one call every
// minGap, burst 1 (a single in-flight call at a time, per spec.md §5).
func NewPacedEvaluator(inner Evaluator, minGapSeconds float64) *PacedEvaluator {
	return &PacedEvaluator{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(1.0/minGapSeconds), 1),
	}
}

// Evaluate blocks until the pacing limiter admits the call, then delegates.
func (p *PacedEvaluator) Evaluate(ctx context.Context, sourceTitle string, articles []entity.Article) ([]entity.Evaluation, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Evaluate(ctx, sourceTitle, articles)
}

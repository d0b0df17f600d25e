package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/studyvault/studyvault/internal/core/domain"
	"github.com/studyvault/studyvault/internal/infrastructure/resilience"
)

// Client wraps the hosted completion service for the two places the
// system talks to it: optional keyword enrichment during vectorization
// and final answer generation at question time.
type Client struct {
	client    *genai.Client
	modelName string
	executor  *resilience.Executor
}

func New(ctx context.Context, apiKey, modelName string, executor *resilience.Executor) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{
		client:    client,
		modelName: modelName,
		executor:  executor,
	}, nil
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Keywords asks for a short comma-separated keyword summary of a chunk.
// Callers treat any error as "skip enrichment".
func (c *Client) Keywords(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	out, err := c.generate(ctx, "gemini.keywords", buildKeywordPrompt(text))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) GenerateAnswer(ctx context.Context, question string, sources []domain.ScoredChunk) (string, error) {
	out, err := c.generate(ctx, "gemini.answer", buildAnswerPrompt(question, sources))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) generate(ctx context.Context, operation, prompt string) (string, error) {
	var result string
	call := func(ctx context.Context) error {
		model := c.client.GenerativeModel(c.modelName)
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return fmt.Errorf("gemini generate: %w", err)
		}
		result = collectText(resp)
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Run(ctx, operation, classifyModelError, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return result, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// classifyModelError treats everything but caller cancellation as worth
// a retry; the hosted endpoint's transient failures and rate limits are
// indistinguishable without decoding provider payloads.
func classifyModelError(err error) resilience.Outcome {
	switch {
	case err == nil:
		return resilience.Outcome{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.Outcome{}
	default:
		return resilience.Outcome{Retry: true, Trip: true}
	}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyModelError(err).Retry || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

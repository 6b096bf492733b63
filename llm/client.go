package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nijaru/lexai/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	summarizePrompt = "Summarize this video transcript:\n%s"
	answerPrompt    = "Summary:\n%s\n\nQuestion: %s"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatCompleter is the part of the OpenAI client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client sends single-message prompts to an OpenAI-compatible endpoint.
type Client struct {
	api    ChatCompleter
	model  string
	logger logrus.FieldLogger
}

type Option func(*Client)

func WithChatCompleter(api ChatCompleter) Option {
	return func(c *Client) {
		c.api = api
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		model:  cfg.Model,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summarize condenses a transcript.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	return c.complete(ctx, "llm.Summarize", fmt.Sprintf(summarizePrompt, transcript))
}

// Answer answers question using only the given summary as context.
func (c *Client) Answer(ctx context.Context, summary, question string) (string, error) {
	return c.complete(ctx, "llm.Answer", fmt.Sprintf(answerPrompt, summary, question))
}

func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	logger := c.logger.WithFields(logrus.Fields{
		"operation":     op,
		"model":         c.model,
		"prompt_length": len(prompt),
	})

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		logger.WithError(err).Error("Chat completion failed")
		return "", errors.Upstream(op, err, fmt.Sprintf("Language model request failed: %s", describe(err)))
	}

	if len(resp.Choices) == 0 {
		logger.Error("Chat completion returned no choices")
		return "", errors.Upstream(op, nil, "Language model returned no answer")
	}

	logger.WithFields(logrus.Fields{
		"duration":          time.Since(start),
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("Chat completion finished")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// describe keeps API error details short enough to show to a user.
func describe(err error) string {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return fmt.Sprintf("%d %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	return err.Error()
}

// Package openai provides a location classifier for OpenAI-compatible chat
// completion APIs (OpenAI, OpenRouter, Ollama's /v1 endpoint)
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/pantry/internal/infrastructure/ai"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	localBaseURL   = "http://localhost:11434/v1"
	localModel     = "llama3.2:3b"
)

// Classifier implements LocationClassifier over /chat/completions
type Classifier struct {
	client      *resty.Client
	limiter     *rate.Limiter
	model       string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// OpenAI API structures
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClassifier creates a new OpenAI-compatible classifier. Without an API
// key or base URL it talks to a local Ollama server.
func NewClassifier(cfg config.ClassifierConfig, logger *zap.Logger) *Classifier {
	logger = logger.Named("openai-classifier")

	baseURL, model := cfg.BaseURL, cfg.Model
	switch {
	case cfg.APIKey == "" && baseURL == "":
		baseURL = localBaseURL
		if model == "" || strings.HasPrefix(model, "gpt-") {
			model = localModel
		}
		logger.Info("No classifier API key, using local Ollama", zap.String("model", model))
	case baseURL == "":
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &Classifier{
		client:      client,
		limiter:     newLimiter(cfg.RequestsPerMin, cfg.Burst),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// ClassifyItemsToLocations asks the model for an item to location object
func (c *Classifier) ClassifyItemsToLocations(ctx context.Context, itemNames, locationNames []string) (map[string]string, error) {
	if len(itemNames) == 0 {
		return map[string]string{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("classifier rate limit: %w", err)
	}

	system, user := ai.LocationPrompt(itemNames, locationNames)
	req := chatCompletionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	start := time.Now()
	var result chatCompletionResponse
	var apiErr errorResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send classifier request: %w", err)
	}

	if resp.IsError() {
		detail := apiErr.Error.Message
		if detail == "" {
			detail = resp.Status()
		}
		return nil, fmt.Errorf("classifier API returned %d: %s", resp.StatusCode(), detail)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in classifier response")
	}

	answer, err := ai.ParseLocationAnswer(result.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Classified items",
		zap.String("model", c.model),
		zap.Int("items", len(itemNames)),
		zap.Int("answered", len(answer)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return answer, nil
}

// Ping checks that the API answers the model listing
func (c *Classifier) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("models endpoint returned %d", resp.StatusCode())
	}
	return nil
}

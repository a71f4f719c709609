// Package ollama provides a location classifier backed by a local Ollama
// server's native chat API
package ollama

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
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2:3b"
)

// Classifier implements LocationClassifier over Ollama's /api/chat
type Classifier struct {
	client      *resty.Client
	limiter     *rate.Limiter
	model       string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// Ollama API structures
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Format   string                 `json:"format,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatResponse struct {
	Model         string      `json:"model"`
	Message       chatMessage `json:"message"`
	Done          bool        `json:"done"`
	TotalDuration int64       `json:"total_duration,omitempty"`
	EvalCount     int         `json:"eval_count,omitempty"`
}

// NewClassifier creates a new Ollama classifier
func NewClassifier(cfg config.ClassifierConfig, logger *zap.Logger) *Classifier {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultModel
	}

	logger = logger.Named("ollama-classifier")
	logger.Info("Ollama classifier initialized",
		zap.String("base_url", baseURL),
		zap.String("model", model),
		zap.Duration("timeout", cfg.Timeout),
	)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMin > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMin)), burst)
	}

	return &Classifier{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
		limiter:     limiter,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// ClassifyItemsToLocations asks the model for an item to location object
// using Ollama's JSON output mode
func (c *Classifier) ClassifyItemsToLocations(ctx context.Context, itemNames, locationNames []string) (map[string]string, error) {
	if len(itemNames) == 0 {
		return map[string]string{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("classifier rate limit: %w", err)
	}

	system, user := ai.LocationPrompt(itemNames, locationNames)
	options := map[string]interface{}{"temperature": c.temperature}
	if c.maxTokens > 0 {
		options["num_predict"] = c.maxTokens
	}

	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			Stream:  false,
			Format:  "json",
			Options: options,
		}).
		SetResult(&result).
		Post("/api/chat")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Ollama: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("Ollama API returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	answer, err := ai.ParseLocationAnswer(result.Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Classified items",
		zap.String("model", result.Model),
		zap.Int("items", len(itemNames)),
		zap.Int("answered", len(answer)),
		zap.Duration("duration", time.Duration(result.TotalDuration)),
	)

	return answer, nil
}

// Ping checks that the server lists its models
func (c *Classifier) Ping(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("Ollama tags endpoint returned %d", resp.StatusCode())
	}
	return nil
}

package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/synthsearch/internal/domain"
	"github.com/kailas-cloud/synthsearch/internal/metrics"
)

const greetingTemplate = "Hi, are you awake? strictly answer with : 'Hi my name is %s! I'm up'"

// Config holds the model server settings.
type Config struct {
	BaseURL string
	Params  domain.ModelParams
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client performs single-shot completions against a locally served model.
type Client struct {
	model   llms.Model
	params  domain.ModelParams
	timeout time.Duration
	models  *openai.Client // OpenAI-compatible /v1 endpoint, used to list pulled models
	logger  *zap.Logger
}

// New builds a client on top of langchaingo's Ollama driver.
func New(cfg Config) (*Client, error) {
	opts := []ollama.Option{
		ollama.WithModel(cfg.Params.Model),
		ollama.WithServerURL(cfg.BaseURL),
	}
	if cfg.Params.KeepAlive != "" {
		opts = append(opts, ollama.WithKeepAlive(cfg.Params.KeepAlive))
	}

	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}

	c := NewWithModel(model, cfg.Params, cfg.Timeout, cfg.Logger)
	if cfg.BaseURL != "" {
		// Ollama ignores the key but the client requires one.
		modelsCfg := openai.DefaultConfig("ollama")
		modelsCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"
		c.models = openai.NewClientWithConfig(modelsCfg)
	}
	return c, nil
}

// NewWithModel wraps an existing model, typically a test double.
func NewWithModel(model llms.Model, params domain.ModelParams, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		model:   model,
		params:  params,
		timeout: timeout,
		logger:  logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.params.Model }

// Complete sends prompt as a single human turn and returns the generated text.
// Transport failures and empty responses wrap domain.ErrModelUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithTemperature(c.params.Temperature),
	)
	metrics.LLMRequestDuration.WithLabelValues(c.params.Model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.params.Model, "error").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(c.params.Model, "empty").Inc()
		return "", fmt.Errorf("%w: empty response", domain.ErrModelUnavailable)
	}
	metrics.LLMRequestsTotal.WithLabelValues(c.params.Model, "success").Inc()

	text := resp.Choices[0].Content
	c.logger.Debug("Model completion", zap.String("model", c.params.Model), zap.Int("chars", len(text)))
	return text, nil
}

// Greet sends the fixed liveness prompt and returns the model's reply verbatim.
func (c *Client) Greet(ctx context.Context) (string, error) {
	return c.Complete(ctx, fmt.Sprintf(greetingTemplate, c.params.Model))
}

// HealthCheck verifies the model server is up and has the configured model pulled.
// It lists models, so no model has to be loaded.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.models == nil {
		return errors.New("model server url not configured")
	}

	list, err := c.models.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("%w: list models: %w", domain.ErrModelUnavailable, err)
	}
	for _, m := range list.Models {
		if m.ID == c.params.Model || strings.TrimSuffix(m.ID, ":latest") == c.params.Model {
			return nil
		}
	}
	return fmt.Errorf("%w: model %q is not pulled", domain.ErrModelUnavailable, c.params.Model)
}

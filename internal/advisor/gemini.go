// Package advisor wraps the generative language model used for goal analysis and chat.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 60 * time.Second

// ErrNotConfigured is returned by an advisor without an API key.
var ErrNotConfigured = errors.New("advisor api key not configured")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("advisor returned an empty response")

// Config holds the connection settings of a GeminiClient.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional API root override
	Timeout time.Duration
}

// GeminiClient generates text with the Gemini API.
// The zero value and a client built without an API key are valid but unconfigured.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewGeminiClient creates a Gemini client.
// An empty API key yields an unconfigured client rather than an error.
//
// Parameters:
//   - ctx: context for client construction
//   - cfg: connection settings
//   - log: parent logger
//
// Returns:
//   - *GeminiClient: client ready for use, possibly unconfigured
//   - error: if the underlying SDK client could not be created
func NewGeminiClient(ctx context.Context, cfg Config, log zerolog.Logger) (*GeminiClient, error) {
	c := &GeminiClient{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     log.With().Str("client", "gemini").Logger(),
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return c, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	c.client = client

	return c, nil
}

// Configured reports whether the client has credentials. It performs no I/O.
func (c *GeminiClient) Configured() bool {
	return c != nil && c.client != nil
}

// GenerateJSON asks the model for a JSON-only answer to prompt.
// The returned text may still carry code fences and must be cleaned by the caller.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
	})
}

// GenerateText asks the model for a free text answer to prompt.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.7)),
	})
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.log.Debug().
		Str("model", c.model).
		Dur("duration", time.Since(start)).
		Int("response_chars", len(text)).
		Msg("Generated content")

	return text, nil
}

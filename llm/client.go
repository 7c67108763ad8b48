package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/organarr/organarr/apiclient"
	"github.com/organarr/organarr/safecast"
)

const (
	// DefaultBaseURL targets a local Ollama instance through its
	// OpenAI-compatible endpoint.
	DefaultBaseURL = "http://localhost:11434/v1"

	// DefaultModel is a small local model good enough for filename work.
	DefaultModel = "deepseek-r1:8b"

	vendorName = "llm"
)

const analyzeSystemPrompt = `You are a media file analyzer. Given a media filename, extract structured metadata from it. Respond with a single JSON object and nothing else, using these keys: title (string), year (number), season (number), episode (number), quality (string), codec (string), audio (string). Omit keys you cannot determine.`

const suggestSystemPrompt = `You are a media file renaming assistant. Given a media filename, respond with a single standardized filename in the form "Title (Year) - S01E01 - Episode Title.ext" for TV or "Title (Year).ext" for movies. Respond with the filename only, no explanations.`

// completer is the slice of the go-openai client the wrapper uses.
// Narrow so tests can inject fakes.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Client talks to an OpenAI-compatible completion endpoint, local
// Ollama by default, and turns free-form model output into structured
// filename metadata.
type Client struct {
	api         completer
	model       string
	temperature float32
	maxTokens   int
	logger      zerolog.Logger
}

// NewClient creates an LLM client against an OpenAI-compatible
// endpoint. For hosted endpoints pass the real key with WithAPIKey;
// Ollama accepts any non-empty key.
func NewClient(baseURL, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg := openai.DefaultConfig(o.apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: o.temperature,
		maxTokens:   o.maxTokens,
		logger:      o.logger,
	}, nil
}

// CheckModel reports whether the configured model is available on the
// endpoint.
func (c *Client) CheckModel(ctx context.Context) (bool, error) {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return false, classifyError(err)
	}

	for _, m := range models.Models {
		if m.ID == c.model {
			return true, nil
		}
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("available", len(models.Models)).
		Msg("Model not present on endpoint")
	return false, nil
}

// TestConnection verifies the endpoint answers and serves the
// configured model.
func (c *Client) TestConnection(ctx context.Context) error {
	ok, err := c.CheckModel(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to LLM endpoint: %w", err)
	}
	if !ok {
		return fmt.Errorf("model %q is not available on the endpoint", c.model)
	}
	return nil
}

// GenerateText runs one completion. An empty systemPrompt sends the
// user prompt alone.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// ParseFilename asks the model to read a media filename and returns
// its structured guess. The result is a low-confidence metadata
// source: useful when pattern matching fails, never authoritative.
func (c *Client) ParseFilename(ctx context.Context, filename string) (*FilenameGuess, error) {
	prompt := "Extract information from this filename: " + filename

	text, err := c.GenerateText(ctx, analyzeSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	// Decode into a loose map first. Models answer with numbers as
	// strings often enough that strict struct unmarshaling is too
	// brittle.
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		return nil, &apiclient.Error{
			Kind:    apiclient.KindParse,
			Vendor:  vendorName,
			Message: "model answered with invalid JSON",
			Err:     err,
		}
	}

	guess := &FilenameGuess{
		Title:   safecast.String(raw["title"], ""),
		Year:    safecast.Int(raw["year"], 0),
		Season:  safecast.Int(raw["season"], 0),
		Episode: safecast.Int(raw["episode"], 0),
		Quality: safecast.String(raw["quality"], ""),
		Codec:   safecast.String(raw["codec"], ""),
		Audio:   safecast.String(raw["audio"], ""),
	}

	c.logger.Debug().
		Str("filename", filename).
		Str("guess", guess.String()).
		Msg("LLM filename analysis")
	return guess, nil
}

// SuggestFilename asks the model for a standardized rename of the
// given filename.
func (c *Client) SuggestFilename(ctx context.Context, filename string) (string, error) {
	text, err := c.GenerateText(ctx, suggestSystemPrompt, "Suggest a standardized filename for: "+filename)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// stripFences removes a Markdown code fence around the payload. Chat
// models wrap JSON in fences no matter how firmly the prompt says not
// to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

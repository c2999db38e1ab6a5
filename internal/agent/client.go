package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = "You are a hospital triage assistant. Provide brief, safe, non-diagnostic guidance. " +
	"Do not claim certainty. Encourage emergency care for red flags."

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	defaultTimeout     = 12 * time.Second
	defaultTemperature = 0.2
	defaultOllamaURL   = "http://localhost:11434"
	defaultOpenAIURL   = "https://api.openai.com"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
	ErrEmptyCompletion     = errors.New("llm returned no content")
	ErrMissingCredentials  = errors.New("llm provider is missing credentials")
)

// GuidanceClient returns supplementary free text for a patient message.
// Its output is advisory and never changes the triage result.
type GuidanceClient interface {
	Guidance(ctx context.Context, message string) (string, error)
}

type Config struct {
	Provider      string
	OllamaURL     string
	OllamaModel   string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
}

// NewGuidanceClient returns nil and no error when no provider is configured.
func NewGuidanceClient(cfg Config) (GuidanceClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "":
		return nil, nil
	case ProviderOllama:
		return &ollamaClient{
			httpClient: httpClient,
			baseURL:    orDefault(cfg.OllamaURL, defaultOllamaURL),
			model:      orDefault(cfg.OllamaModel, "llama3.1"),
		}, nil
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, ErrMissingCredentials
		}
		return &openAIClient{
			httpClient: httpClient,
			baseURL:    orDefault(cfg.OpenAIBaseURL, defaultOpenAIURL),
			apiKey:     cfg.OpenAIKey,
			model:      orDefault(cfg.OpenAIModel, "gpt-4o-mini"),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func conversation(message string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: message},
	}
}

type ollamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

type ollamaResponse struct {
	Message chatMessage `json:"message"`
}

func (c *ollamaClient) Guidance(ctx context.Context, message string) (string, error) {
	payload := ollamaRequest{Model: c.model, Messages: conversation(message)}
	payload.Options.Temperature = defaultTemperature

	var resp ollamaResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/api/chat", "", payload, &resp); err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return nonEmpty(resp.Message.Content)
}

type openAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Guidance(ctx context.Context, message string) (string, error) {
	payload := openAIRequest{Model: c.model, Messages: conversation(message), Temperature: defaultTemperature}

	var resp openAIResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/chat/completions", c.apiKey, payload, &resp); err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return nonEmpty(resp.Choices[0].Message.Content)
}

func postJSON(ctx context.Context, client *http.Client, url, bearer string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(url, "/"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api error: %s - %s", resp.Status, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func nonEmpty(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func orDefault(v, def string) string {
	v = strings.TrimRight(strings.TrimSpace(v), "/")
	if v == "" {
		return def
	}
	return v
}

// File path: internal/llm/providers/gemini.go
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sacred-sikkim/monastery360/internal/common"
)

// GeminiConfig holds the settings for the Gemini REST provider.
type GeminiConfig struct {
	BaseURL     string
	APIKey      string
	ChatModel   string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

// DefaultGeminiConfig returns the standard Gemini settings.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
		ChatModel:   "gemini-1.5-flash",
		Temperature: 0.7,
		MaxTokens:   1024,
		Timeout:     60 * time.Second,
		MaxRetries:  2,
	}
}

// GeminiProvider talks to the Gemini generateContent endpoint. The credential
// travels as a query-string parameter; the generated text is read from the
// candidates/content/parts path of the response.
type GeminiProvider struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

func NewGeminiProvider(cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key required")
	}
	defaults := DefaultGeminiConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaults.ChatModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaults.Temperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &GeminiProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiChatRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiChatResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
			Role string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	logger := common.Logger()
	var contents []geminiContent
	var system *geminiContent
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = &geminiContent{Parts: []geminiPart{{Text: msg.Content}}}
		case RoleAssistant:
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: msg.Content}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}})
		}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: no messages provided")
	}
	body, err := json.Marshal(geminiChatRequest{
		Contents:          contents,
		SystemInstruction: system,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     p.cfg.Temperature,
			MaxOutputTokens: p.cfg.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.ChatModel, p.cfg.APIKey)
	resp, err := p.doWithRetry(ctx, url, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		logger.Error("gemini: request rejected", "status", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed geminiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: response missing candidates content")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// doWithRetry retries transient failures (network errors and 5xx/429) with a
// short linear backoff. The request body is rebuilt per attempt.
func (p *GeminiProvider) doWithRetry(ctx context.Context, url string, body []byte) (*http.Response, error) {
	logger := common.Logger()
	var lastErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gemini: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("gemini: request failed: %w", err)
			logger.Warn("gemini: attempt failed", "attempt", attempt+1, "error", err)
			continue
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			resp.Body.Close()
			lastErr = fmt.Errorf("gemini: transient status %d: %s", resp.StatusCode, string(respBody))
			logger.Warn("gemini: transient failure", "attempt", attempt+1, "status", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

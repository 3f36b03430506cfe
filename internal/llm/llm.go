// File path: internal/llm/llm.go
package llm

import (
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/sacred-sikkim/monastery360/internal/common"
	"github.com/sacred-sikkim/monastery360/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

// NotConfiguredMessage mirrors the local provider constant for callers that
// need to detect the degraded mode.
const NotConfiguredMessage = providers.NotConfiguredMessage

// NewProvider selects the generation backend from the environment: Gemini
// when GEMINI_API_KEY is set, an OpenAI-compatible endpoint when only
// OPENAI_API_KEY is set, and the local not-configured fallback otherwise.
// A missing credential never aborts startup; the pipeline degrades instead.
func NewProvider() Provider {
	logger := common.Logger()
	if apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); apiKey != "" {
		cfg := providers.DefaultGeminiConfig()
		cfg.APIKey = apiKey
		if base := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")); base != "" {
			cfg.BaseURL = base
		}
		if model := strings.TrimSpace(os.Getenv("GEMINI_CHAT_MODEL")); model != "" {
			cfg.ChatModel = model
		}
		if timeoutStr := strings.TrimSpace(os.Getenv("GEMINI_HTTP_TIMEOUT")); timeoutStr != "" {
			if timeout, err := time.ParseDuration(timeoutStr); err != nil {
				logger.Warn("llm: invalid GEMINI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
			} else {
				cfg.Timeout = timeout
			}
		}
		if tokensStr := strings.TrimSpace(os.Getenv("GEMINI_MAX_TOKENS")); tokensStr != "" {
			if tokens, err := strconv.Atoi(tokensStr); err != nil || tokens <= 0 {
				logger.Warn("llm: invalid GEMINI_MAX_TOKENS, using default", "value", tokensStr)
			} else {
				cfg.MaxTokens = tokens
			}
		}
		provider, err := providers.NewGeminiProvider(cfg)
		if err != nil {
			logger.Error("llm: gemini provider init failed, falling back", "error", err)
		} else {
			logger.Info("llm: Gemini provider selected", "model", cfg.ChatModel)
			return provider
		}
	}
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
			logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
			opts = append(opts, option.WithBaseURL(endpoint))
		}
		client := openai.NewClient(opts...)
		logger.Info("llm: OpenAI provider selected")
		return providers.NewOpenAIProvider(client)
	}
	logger.Warn("llm: no generation credential set; chat degrades to the not-configured message")
	return providers.NewLocalProvider()
}

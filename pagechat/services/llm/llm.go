// pagechat/services/llm/llm.go
package llm

import (
	"context"
	"fmt"

	"pagechat/pagechat/config"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OllamaBaseURL = "http://localhost:11434"
)

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Completer runs one non-streaming chat completion and returns the
// generated text. An empty string means the upstream produced no content.
type Completer interface {
	Run(ctx context.Context, req ChatRequest) (string, error)
}

// NewClient returns the Completer for cfg.LLMProvider.
func NewClient(cfg config.Config) (Completer, error) {
	switch cfg.LLMProvider {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("missing OPENAI_API_KEY")
		}
		return NewOpenAIClient(baseURLOr(cfg.LLMBaseURL, OpenAIBaseURL), cfg.OpenAIAPIKey), nil
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("missing GROQ_API_KEY")
		}
		return NewOpenAIClient(baseURLOr(cfg.LLMBaseURL, GroqBaseURL), cfg.GroqAPIKey), nil
	case "ollama":
		return NewOllamaClient(baseURLOr(cfg.LLMBaseURL, OllamaBaseURL)), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func baseURLOr(url, fallback string) string {
	if url != "" {
		return url
	}
	return fallback
}

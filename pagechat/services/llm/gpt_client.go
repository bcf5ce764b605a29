package llm

import (
	"context"
	"fmt"
	"strings"

	httputils "pagechat/pagechat/utils/http"
	"pagechat/pagechat/utils/logging"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself, Groq).
type OpenAIClient struct {
	apiKey  string
	baseURL string
}

func NewOpenAIClient(baseURL, apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type gptResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Run executes a single chat completion request (non-streaming)
func (c *OpenAIClient) Run(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "gpt_service_run")()

	var parsed gptResponse
	if err := httputils.PostJSONWithAuth(ctx, c.baseURL+"/chat/completions", c.apiKey, req, &parsed); err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

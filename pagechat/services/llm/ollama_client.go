package llm

import (
	"context"
	"fmt"
	"strings"

	httputils "pagechat/pagechat/utils/http"
	"pagechat/pagechat/utils/logging"
)

// OllamaClient uses Ollama's native /api/chat, which carries images as raw
// base64 strings next to the text instead of content parts.
type OllamaClient struct {
	baseURL string
}

func NewOllamaClient(baseURL string) *OllamaClient {
	return &OllamaClient{baseURL: strings.TrimRight(baseURL, "/")}
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (c *OllamaClient) Run(ctx context.Context, req ChatRequest) (string, error) {
	defer logging.LogDuration(ctx, "ollama_service_run")()

	body := ollamaRequest{
		Model:    req.Model,
		Messages: make([]ollamaMessage, 0, len(req.Messages)),
		Stream:   false,
		Options:  map[string]any{"temperature": req.Temperature},
	}
	if req.MaxTokens > 0 {
		body.Options["num_predict"] = req.MaxTokens
	}
	for _, m := range req.Messages {
		om := ollamaMessage{Role: m.Role, Content: m.Content.String()}
		for _, url := range m.Content.Images() {
			om.Images = append(om.Images, stripDataURL(url))
		}
		body.Messages = append(body.Messages, om)
	}

	var resp ollamaResponse
	if err := httputils.PostJSON(ctx, c.baseURL+"/api/chat", body, &resp); err != nil {
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}
	return resp.Message.Content, nil
}

// stripDataURL turns "data:image/jpeg;base64,XXXX" into "XXXX".
func stripDataURL(url string) string {
	if !strings.HasPrefix(url, "data:") {
		return url
	}
	if i := strings.Index(url, ","); i >= 0 {
		return url[i+1:]
	}
	return url
}

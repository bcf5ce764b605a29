package capture

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pagechat/pagechat/utils/htmlutils"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTPCapturer fetches the raw HTML and extracts its text. It never runs
// scripts, so it cannot take screenshots.
type HTTPCapturer struct {
	client *http.Client
}

func NewHTTPCapturer(timeout time.Duration) *HTTPCapturer {
	return &HTTPCapturer{client: &http.Client{Timeout: timeout}}
}

func (h *HTTPCapturer) Capture(ctx context.Context, url string, _ bool) (*PageCapture, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: bad status %s", url, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return &PageCapture{
		URL:   url,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  htmlutils.DocumentText(doc),
	}, nil
}

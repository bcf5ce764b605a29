package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"pagechat/pagechat/utils/logging"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// BrowserCapturer drives headless Chromium, so it sees script-rendered text
// and can screenshot the viewport.
type BrowserCapturer struct {
	timeout time.Duration

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewBrowserCapturer(timeout time.Duration) *BrowserCapturer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BrowserCapturer{timeout: timeout}
}

// Start launches the Playwright driver and the browser.
func (b *BrowserCapturer) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     []string{"--disable-gpu", "--no-sandbox", "--disable-dev-shm-usage"},
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("launch chromium: %w", err)
	}
	b.pw, b.browser = pw, browser
	return nil
}

// Close stops the browser and Playwright
func (b *BrowserCapturer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		b.browser.Close()
	}
	if b.pw != nil {
		b.pw.Stop()
	}
	b.browser, b.pw = nil, nil
}

func (b *BrowserCapturer) Capture(ctx context.Context, url string, withScreenshot bool) (*PageCapture, error) {
	defer logging.LogDuration(ctx, "browser_capture")()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil, fmt.Errorf("browser capturer not started")
	}

	page, err := b.browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1280, Height: 800},
	})
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(b.timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}

	result, err := page.Evaluate("() => document.body ? document.body.innerText : ''")
	if err != nil {
		return nil, fmt.Errorf("read page text: %w", err)
	}
	text, _ := result.(string)
	title, _ := page.Title()

	capture := &PageCapture{URL: url, Title: title, Text: text}
	if withScreenshot {
		shot, err := page.Screenshot(playwright.PageScreenshotOptions{
			Type:    playwright.ScreenshotTypeJpeg,
			Quality: playwright.Int(70),
		})
		if err != nil {
			logging.ErrorLogger.Error("Screenshot capture failed", zap.String("url", url), zap.Error(err))
		} else {
			capture.Screenshot = base64.StdEncoding.EncodeToString(shot)
		}
	}
	return capture, nil
}

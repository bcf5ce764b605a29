// Package capture reads the visible text (and optionally a screenshot) of a
// web page for the chat client.
package capture

import (
	"context"
	"sync"

	"pagechat/pagechat/utils/logging"

	"go.uber.org/zap"
)

// PageCapture is what was read from one page.
type PageCapture struct {
	URL   string
	Title string
	Text  string
	// Screenshot is base64 without a data: prefix, empty when not taken.
	Screenshot string
}

type Capturer interface {
	Capture(ctx context.Context, url string, withScreenshot bool) (*PageCapture, error)
}

// Starter is a Capturer that needs a one-time start before use.
type Starter interface {
	Capturer
	Start() error
	Close()
}

// LazyCapturer starts primary on first use. If it cannot start, every
// capture goes to fallback instead.
type LazyCapturer struct {
	primary  Starter
	fallback Capturer

	once     sync.Once
	started  bool
	startErr error
}

func NewLazyCapturer(primary Starter, fallback Capturer) *LazyCapturer {
	return &LazyCapturer{primary: primary, fallback: fallback}
}

// Ready starts the primary capturer if that has not happened yet and
// reports whether it is usable.
func (l *LazyCapturer) Ready() bool {
	l.once.Do(func() {
		l.started = true
		l.startErr = l.primary.Start()
		if l.startErr != nil {
			logging.ErrorLogger.Error("browser capture unavailable, using plain HTTP", zap.Error(l.startErr))
		}
	})
	return l.started && l.startErr == nil
}

func (l *LazyCapturer) Capture(ctx context.Context, url string, withScreenshot bool) (*PageCapture, error) {
	if !l.Ready() {
		return l.fallback.Capture(ctx, url, false)
	}
	return l.primary.Capture(ctx, url, withScreenshot)
}

// Close stops the primary capturer if it was started. A capturer closed
// before first use never starts it and falls back from then on.
func (l *LazyCapturer) Close() {
	l.once.Do(func() {})
	if l.started && l.startErr == nil {
		l.primary.Close()
	}
}

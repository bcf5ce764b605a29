package capture

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPCapturerExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a user agent")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title> Recipes </title><script>track()</script></head>
<body><h1>Pancakes</h1><p>Mix flour and milk.</p></body></html>`))
	}))
	defer srv.Close()

	got, err := NewHTTPCapturer(5*time.Second).Capture(context.Background(), srv.URL, true)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got.Title != "Recipes" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if got.Text != "Pancakes\n\nMix flour and milk." {
		t.Errorf("unexpected text %q", got.Text)
	}
	if got.Screenshot != "" {
		t.Errorf("plain HTTP capture cannot have a screenshot")
	}
}

func TestHTTPCapturerBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := NewHTTPCapturer(time.Second).Capture(context.Background(), srv.URL, false); err == nil {
		t.Errorf("expected error for 404")
	}
}

type stubStarter struct {
	startErr error
	starts   int
	captures int
	closed   bool
}

func (s *stubStarter) Start() error { s.starts++; return s.startErr }
func (s *stubStarter) Close()       { s.closed = true }
func (s *stubStarter) Capture(ctx context.Context, url string, withScreenshot bool) (*PageCapture, error) {
	s.captures++
	return &PageCapture{URL: url, Text: "from browser", Screenshot: "c2hvdA=="}, nil
}

type stubFallback struct{ calls int }

func (s *stubFallback) Capture(ctx context.Context, url string, withScreenshot bool) (*PageCapture, error) {
	s.calls++
	return &PageCapture{URL: url, Text: "from http"}, nil
}

func TestLazyCapturerUsesPrimaryWhenItStarts(t *testing.T) {
	primary, fallback := &stubStarter{}, &stubFallback{}
	lc := NewLazyCapturer(primary, fallback)

	for i := 0; i < 2; i++ {
		got, err := lc.Capture(context.Background(), "http://example.com", true)
		if err != nil || got.Text != "from browser" {
			t.Fatalf("unexpected capture %+v %v", got, err)
		}
	}
	if primary.starts != 1 {
		t.Errorf("expected a single start, got %d", primary.starts)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback should not be used")
	}
	lc.Close()
	if !primary.closed {
		t.Errorf("expected primary to be closed")
	}
}

func TestLazyCapturerFallsBack(t *testing.T) {
	primary, fallback := &stubStarter{startErr: errors.New("no chromium")}, &stubFallback{}
	lc := NewLazyCapturer(primary, fallback)

	got, err := lc.Capture(context.Background(), "http://example.com", true)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got.Text != "from http" || got.Screenshot != "" {
		t.Errorf("expected fallback capture without screenshot, got %+v", got)
	}
	if lc.Ready() {
		t.Errorf("expected Ready to stay false")
	}
	if primary.captures != 0 {
		t.Errorf("primary must not be used after failing to start")
	}
	lc.Close()
	if primary.closed {
		t.Errorf("primary never started, nothing to close")
	}
}

func TestLazyCapturerCloseUnusedDoesNotStart(t *testing.T) {
	primary := &stubStarter{}
	lc := NewLazyCapturer(primary, &stubFallback{})

	lc.Close()

	if primary.starts != 0 {
		t.Errorf("expected no start, got %d", primary.starts)
	}
	if primary.closed {
		t.Errorf("primary never started, nothing to close")
	}
	got, err := lc.Capture(context.Background(), "http://example.com", false)
	if err != nil || got.Text != "from http" {
		t.Fatalf("expected fallback capture after close, got %+v %v", got, err)
	}
	if primary.starts != 0 || primary.captures != 0 {
		t.Errorf("closed capturer must not use the browser, got %d starts", primary.starts)
	}
}

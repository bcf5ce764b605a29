package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pagechat/pagechat/config"
	"pagechat/pagechat/services/llm"
	"pagechat/pagechat/sources/memory"
	"pagechat/pagechat/utils/types"
)

type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.ChatRequest
}

func (f *fakeCompleter) Run(ctx context.Context, req llm.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeScreenshots struct {
	uploads []string
	err     error
}

func (f *fakeScreenshots) UploadScreenshot(ctx context.Context, sessionID, b64 string) (string, error) {
	f.uploads = append(f.uploads, b64)
	return "screenshots/" + sessionID + "/x.jpg", f.err
}

// --- Helpers ---
func setupRelay(t *testing.T, completer *fakeCompleter) (*RelayController, *memory.SessionStore, string) {
	t.Helper()
	store := memory.NewSessionStore()
	cfg := config.Config{LLMModel: "gpt-4o", LLMTemperature: 0.7, LLMMaxTokens: 2048}
	ctrl := NewRelayController(completer, store, cfg)
	return ctrl, store, store.Create().ID
}

func historyLen(t *testing.T, store *memory.SessionStore, id string) int {
	t.Helper()
	h, ok := store.History(id)
	if !ok {
		t.Fatalf("session %s missing", id)
	}
	return len(h)
}

func TestHandleMessageSuccess(t *testing.T) {
	completer := &fakeCompleter{reply: "<p>It is a blog post.</p>"}
	ctrl, store, id := setupRelay(t, completer)

	env := ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"what is this page?","context":{"relevant_text":"My blog"}}`))

	if env.Type != types.EnvelopeMessage || env.Content != "<p>It is a blog post.</p>" {
		t.Errorf("unexpected envelope %+v", env)
	}
	if completer.calls() != 1 {
		t.Errorf("expected exactly one upstream call, got %d", completer.calls())
	}
	if n := historyLen(t, store, id); n != 2 {
		t.Errorf("expected 2 turns after one exchange, got %d", n)
	}

	req := completer.requests[0]
	if req.Model != "gpt-4o" || req.Temperature != 0.7 || req.MaxTokens != 2048 {
		t.Errorf("unexpected request settings %+v", req)
	}
}

func TestHandleMessageGrowsHistoryByTwo(t *testing.T) {
	completer := &fakeCompleter{reply: "<p>ok</p>"}
	ctrl, store, id := setupRelay(t, completer)

	for i := 1; i <= 3; i++ {
		env := ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"again","context":"page"}`))
		if env.IsError() {
			t.Fatalf("exchange %d failed", i)
		}
		if n := historyLen(t, store, id); n != 2*i {
			t.Fatalf("after %d exchanges expected %d turns, got %d", i, 2*i, n)
		}
	}

	// the third request carries instruction, context, new message and 4 prior turns
	last := completer.requests[2]
	if len(last.Messages) != 3+4 {
		t.Fatalf("expected 7 upstream messages, got %d", len(last.Messages))
	}
	if last.Messages[3].Role != llm.RoleUser || last.Messages[4].Role != llm.RoleAssistant {
		t.Errorf("expected prior history after the new message, got roles %s,%s", last.Messages[3].Role, last.Messages[4].Role)
	}
}

func TestHandleMessageMalformedJSON(t *testing.T) {
	completer := &fakeCompleter{reply: "<p>never</p>"}
	ctrl, store, id := setupRelay(t, completer)

	for _, raw := range []string{`not json`, `{"text":"hi"}`, `{"text":"hi","context":null}`, `{"text":"hi","context":7}`} {
		env := ctrl.HandleMessage(context.Background(), id, []byte(raw))
		if env != types.ErrorEnvelope() {
			t.Errorf("%s: expected error envelope, got %+v", raw, env)
		}
	}
	if completer.calls() != 0 {
		t.Errorf("expected no upstream calls, got %d", completer.calls())
	}
	if n := historyLen(t, store, id); n != 0 {
		t.Errorf("expected history untouched, got %d turns", n)
	}
}

func TestHandleMessageEmptyTextIsRelayed(t *testing.T) {
	completer := &fakeCompleter{reply: "<p>Ask me anything about this page.</p>"}
	ctrl, store, id := setupRelay(t, completer)

	env := ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"","context":{"relevant_text":"page"}}`))
	if env.IsError() {
		t.Fatalf("expected a message envelope, got %+v", env)
	}
	if completer.calls() != 1 {
		t.Errorf("expected one upstream call, got %d", completer.calls())
	}
	if n := historyLen(t, store, id); n != 2 {
		t.Errorf("expected 2 turns, got %d", n)
	}
}

func TestHandleMessageUpstreamFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("503 from upstream")}
	ctrl, store, id := setupRelay(t, completer)

	env := ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"hi","context":"page"}`))
	if !env.IsError() || env.Content != types.GenericErrorContent {
		t.Errorf("expected generic error envelope, got %+v", env)
	}
	if completer.calls() != 1 {
		t.Errorf("expected one upstream call, got %d", completer.calls())
	}
	if n := historyLen(t, store, id); n != 0 {
		t.Errorf("expected history untouched, got %d turns", n)
	}
}

func TestHandleMessageUnknownSession(t *testing.T) {
	completer := &fakeCompleter{reply: "<p>x</p>"}
	ctrl, _, _ := setupRelay(t, completer)

	env := ctrl.HandleMessage(context.Background(), "gone", []byte(`{"text":"hi","context":"page"}`))
	if !env.IsError() {
		t.Errorf("expected error for unknown session, got %+v", env)
	}
	if completer.calls() != 0 {
		t.Errorf("expected no upstream call")
	}
}

func TestHandleMessageScreenshotAddsImage(t *testing.T) {
	completer := &fakeCompleter{reply: "<p>I see a chart.</p>"}
	ctrl, store, id := setupRelay(t, completer)
	shots := &fakeScreenshots{}
	ctrl.WithScreenshotArchive(shots)

	env := ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"describe","context":{"relevant_text":"stats","screenshot":"QUJD"}}`))
	if env.IsError() {
		t.Fatalf("unexpected error envelope")
	}

	user := completer.requests[0].Messages[2]
	if !user.HasImage() {
		t.Fatalf("expected image part on the user message")
	}
	if urls := user.Content.Images(); urls[0] != "data:image/jpeg;base64,QUJD" {
		t.Errorf("unexpected image url %s", urls[0])
	}
	if len(shots.uploads) != 1 || shots.uploads[0] != "QUJD" {
		t.Errorf("expected screenshot to be archived, got %v", shots.uploads)
	}

	// history keeps only the text
	history, _ := store.History(id)
	if history[0].HasImage() || history[0].Content.String() != "describe" {
		t.Errorf("expected plain user turn in history, got %+v", history[0])
	}
}

func TestHandleMessageScreenshotArchiveFailureIsIgnored(t *testing.T) {
	completer := &fakeCompleter{reply: "<p>fine</p>"}
	ctrl, _, id := setupRelay(t, completer)
	ctrl.WithScreenshotArchive(&fakeScreenshots{err: errors.New("bucket down")})

	env := ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"describe","context":{"relevant_text":"x","screenshot":"QUJD"}}`))
	if env.IsError() {
		t.Errorf("archive failure must not fail the exchange")
	}
}

func TestHandleMessageNormalizesReply(t *testing.T) {
	completer := &fakeCompleter{reply: "```html\n<p>fenced</p>\n```"}
	ctrl, _, id := setupRelay(t, completer)

	env := ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"hi","context":"p"}`))
	if env.Content != "<p>fenced</p>" {
		t.Errorf("expected fence stripped, got %q", env.Content)
	}

	completer.reply = ""
	env = ctrl.HandleMessage(context.Background(), id, []byte(`{"text":"hi","context":"p"}`))
	if env.Content != "<p>Sorry, I couldn't generate a response.</p>" {
		t.Errorf("expected fallback reply, got %q", env.Content)
	}
}

type deadlineCompleter struct{ hadDeadline bool }

func (d *deadlineCompleter) Run(ctx context.Context, req llm.ChatRequest) (string, error) {
	_, d.hadDeadline = ctx.Deadline()
	return "<p>ok</p>", nil
}

func TestHandleMessageAppliesUpstreamTimeout(t *testing.T) {
	store := memory.NewSessionStore()
	completer := &deadlineCompleter{}
	ctrl := NewRelayController(completer, store, config.Config{UpstreamTimeout: time.Second})

	ctrl.HandleMessage(context.Background(), store.Create().ID, []byte(`{"text":"hi","context":"p"}`))
	if !completer.hadDeadline {
		t.Errorf("expected the upstream call to carry a deadline")
	}
}

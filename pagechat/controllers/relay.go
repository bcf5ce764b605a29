package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagechat/pagechat/config"
	"pagechat/pagechat/services/llm"
	"pagechat/pagechat/sources/memory"
	"pagechat/pagechat/utils/htmlutils"
	"pagechat/pagechat/utils/logging"
	"pagechat/pagechat/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

var errMissingContext = errors.New("message context is missing")

// ScreenshotArchiver stores screenshots received with a message.
type ScreenshotArchiver interface {
	UploadScreenshot(ctx context.Context, sessionID, b64 string) (string, error)
}

// TranscriptArchiver stores a session's history once the connection closes.
type TranscriptArchiver interface {
	SaveTranscript(ctx context.Context, sessionID string, startedAt time.Time, turns []llm.Message) error
}

type RelayController struct {
	llm             llm.Completer
	sessions        *memory.SessionStore
	screenshots     ScreenshotArchiver
	transcripts     TranscriptArchiver
	model           string
	temperature     float64
	maxTokens       int
	upstreamTimeout time.Duration
	readLimit       int64
}

func NewRelayController(client llm.Completer, sessions *memory.SessionStore, cfg config.Config) *RelayController {
	return &RelayController{
		llm:             client,
		sessions:        sessions,
		model:           cfg.LLMModel,
		temperature:     cfg.LLMTemperature,
		maxTokens:       cfg.LLMMaxTokens,
		upstreamTimeout: cfg.UpstreamTimeout,
		readLimit:       cfg.MaxMessageBytes,
	}
}

func (c *RelayController) WithScreenshotArchive(a ScreenshotArchiver) *RelayController {
	c.screenshots = a
	return c
}

func (c *RelayController) WithTranscriptArchive(a TranscriptArchiver) *RelayController {
	c.transcripts = a
	return c
}

// Serve runs one websocket connection as one session. Messages are handled
// in the order they arrive; the next frame is read only after the previous
// reply was written.
func (c *RelayController) Serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if c.readLimit > 0 {
		conn.SetReadLimit(c.readLimit)
	}

	session := c.sessions.Create()
	logging.AppLogger.Info("Client connected", zap.String("session_id", session.ID))
	defer c.closeSession(session.ID)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					logging.ErrorLogger.Error("websocket read error", zap.String("session_id", session.ID), zap.Error(err))
				}
			}
			return
		}

		var reply types.Envelope
		if typ != websocket.MessageText {
			logging.ErrorLogger.Error("unsupported websocket frame", zap.String("session_id", session.ID), zap.Int("frame_type", int(typ)))
			reply = types.ErrorEnvelope()
		} else {
			reply = c.HandleMessage(ctx, session.ID, data)
		}

		if err := wsjson.Write(ctx, conn, reply); err != nil {
			logging.ErrorLogger.Error("websocket write error", zap.String("session_id", session.ID), zap.Error(err))
			return
		}
	}
}

// HandleMessage runs one exchange for the session and returns the envelope
// to send back. Any failure yields the generic error envelope and leaves the
// history untouched.
func (c *RelayController) HandleMessage(ctx context.Context, sessionID string, raw []byte) types.Envelope {
	reply, err := c.exchange(ctx, sessionID, raw)
	if err != nil {
		logging.ErrorLogger.Error("Error processing message", zap.String("session_id", sessionID), zap.Error(err))
		return types.ErrorEnvelope()
	}
	return types.MessageEnvelope(reply)
}

func (c *RelayController) exchange(ctx context.Context, sessionID string, raw []byte) (string, error) {
	defer logging.LogDuration(ctx, "relay_exchange")()

	var in types.InboundMessage
	if err := json.Unmarshal(raw, &in); err != nil {
		return "", fmt.Errorf("decode message: %w", err)
	}
	if in.Context == nil {
		return "", errMissingContext
	}
	history, ok := c.sessions.History(sessionID)
	if !ok {
		return "", fmt.Errorf("history for %s: %w", sessionID, memory.ErrSessionNotFound)
	}

	logging.RequestLogger.Info("Received message",
		zap.String("session_id", sessionID),
		zap.Int("text_len", len(in.Text)),
		zap.Bool("has_screenshot", in.Context.HasScreenshot()),
		zap.Int("screenshot_len", len(in.Context.Screenshot)),
	)
	if in.Context.HasScreenshot() {
		c.archiveScreenshot(ctx, sessionID, in.Context.Screenshot)
	}

	req := llm.ChatRequest{
		Model:       c.model,
		Messages:    buildMessages(in.Text, *in.Context, history),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	callCtx := ctx
	if c.upstreamTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.upstreamTimeout)
		defer cancel()
	}
	completion, err := c.llm.Run(callCtx, req)
	if err != nil {
		return "", fmt.Errorf("upstream completion: %w", err)
	}

	reply := htmlutils.NormalizeReply(completion)
	err = c.sessions.Append(sessionID,
		llm.TextMessage(llm.RoleUser, in.Text),
		llm.TextMessage(llm.RoleAssistant, reply),
	)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// archiveScreenshot never fails the exchange.
func (c *RelayController) archiveScreenshot(ctx context.Context, sessionID, b64 string) {
	if c.screenshots == nil {
		return
	}
	key, err := c.screenshots.UploadScreenshot(ctx, sessionID, b64)
	if err != nil {
		logging.ErrorLogger.Error("screenshot archive failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	logging.AppLogger.Info("Archived screenshot", zap.String("session_id", sessionID), zap.String("key", key))
}

func (c *RelayController) closeSession(sessionID string) {
	session, ok := c.sessions.Delete(sessionID)
	logging.AppLogger.Info("Client disconnected", zap.String("session_id", sessionID), zap.Int("turns", len(session.Turns)))
	if !ok || c.transcripts == nil || len(session.Turns) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.transcripts.SaveTranscript(ctx, session.ID, session.CreatedAt, session.Turns); err != nil {
		logging.ErrorLogger.Error("transcript archive failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// ActiveSessions reports how many connections currently hold a session.
func (c *RelayController) ActiveSessions() int {
	return c.sessions.Len()
}

package types

import (
	"bytes"
	"encoding/json"
)

const (
	EnvelopeMessage = "message"
	EnvelopeError   = "error"

	// GenericErrorContent is the only error text ever sent to clients.
	GenericErrorContent = "Error processing your message"
)

// Envelope is a server to client frame.
type Envelope struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func MessageEnvelope(content string) Envelope {
	return Envelope{Type: EnvelopeMessage, Content: content}
}

func ErrorEnvelope() Envelope {
	return Envelope{Type: EnvelopeError, Content: GenericErrorContent}
}

func (e Envelope) IsError() bool { return e.Type == EnvelopeError }

// InboundMessage is a client to server frame.
type InboundMessage struct {
	Text    string       `json:"text"`
	Context *PageContext `json:"context"`
}

// PageContext is the page-derived data attached to one outgoing message.
// On the wire it is either an object or a bare string holding the page text.
type PageContext struct {
	RelevantText string   `json:"relevant_text"`
	Summary      string   `json:"summary,omitempty"`
	KeyPoints    []string `json:"key_points,omitempty"`
	Screenshot   string   `json:"screenshot,omitempty"`
}

func (p *PageContext) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*p = PageContext{RelevantText: text}
		return nil
	}
	type plain PageContext
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = PageContext(decoded)
	return nil
}

func (p PageContext) HasScreenshot() bool { return p.Screenshot != "" }

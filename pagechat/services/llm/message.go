package llm

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	PartText  = "text"
	PartImage = "image_url"
)

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// Content is plain text, or a list of parts when an image is attached.
// It marshals to a JSON string or array accordingly.
type Content struct {
	Text  string
	Parts []ContentPart
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Content: Content{Text: text}}
}

// ImageMessage builds a message holding text followed by one inline image.
func ImageMessage(role, text, imageURL, detail string) Message {
	return Message{Role: role, Content: Content{Parts: []ContentPart{
		{Type: PartText, Text: text},
		{Type: PartImage, ImageURL: &ImageURL{URL: imageURL, Detail: detail}},
	}}}
}

func (m Message) HasImage() bool {
	return len(m.Content.Images()) > 0
}

// String returns the text of the content, joining text parts with newlines.
func (c Content) String() string {
	if c.Parts == nil {
		return c.Text
	}
	var texts []string
	for _, p := range c.Parts {
		if p.Type == PartText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// Images returns the URLs of all image parts.
func (c Content) Images() []string {
	var urls []string
	for _, p := range c.Parts {
		if p.Type == PartImage && p.ImageURL != nil {
			urls = append(urls, p.ImageURL.URL)
		}
	}
	return urls
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		c.Text = ""
		return json.Unmarshal(data, &c.Parts)
	}
	if bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}
	c.Parts = nil
	return json.Unmarshal(data, &c.Text)
}

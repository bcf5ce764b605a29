// Package relayclient is the client side of the relay websocket protocol.
package relayclient

import (
	"context"
	"fmt"
	"net/http"

	"pagechat/pagechat/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const replyReadLimit = 8 << 20

type Client struct {
	conn *websocket.Conn
}

// Dial opens the persistent connection to the relay at url. token, when
// set, is sent as a Bearer Authorization header.
func Dial(ctx context.Context, url, token string) (*Client, error) {
	opts := &websocket.DialOptions{}
	if token != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + token}}
	}
	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}
	conn.SetReadLimit(replyReadLimit)
	return &Client{conn: conn}, nil
}

func (c *Client) Send(ctx context.Context, text string, pc types.PageContext) error {
	return wsjson.Write(ctx, c.conn, types.InboundMessage{Text: text, Context: &pc})
}

func (c *Client) Receive(ctx context.Context) (types.Envelope, error) {
	var env types.Envelope
	if err := wsjson.Read(ctx, c.conn, &env); err != nil {
		return types.Envelope{}, err
	}
	return env, nil
}

// Exchange sends one message and waits for its reply.
func (c *Client) Exchange(ctx context.Context, text string, pc types.PageContext) (types.Envelope, error) {
	if err := c.Send(ctx, text, pc); err != nil {
		return types.Envelope{}, fmt.Errorf("send: %w", err)
	}
	env, err := c.Receive(ctx)
	if err != nil {
		return types.Envelope{}, fmt.Errorf("receive: %w", err)
	}
	return env, nil
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

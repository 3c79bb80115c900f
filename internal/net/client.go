package net

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/logging"
)

// ErrClientClosed is returned by Send after Close.
var ErrClientClosed = errors.New("client closed")

// Client is a participant connection to a hub.
type Client struct {
	conn   *websocket.Conn
	logger logging.Logger

	mu     sync.Mutex
	closed bool
}

// Dial connects to the hub at url, a ws:// address.
func Dial(ctx context.Context, url string, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(maxMessageSize)
	conn.SetPingHandler(func(data string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	return &Client{conn: conn, logger: logger}, nil
}

// Run reads transports from the hub and hands them to onTransport until
// the connection ends or ctx is done. Malformed frames are skipped.
func (c *Client) Run(ctx context.Context, onTransport func(draw.Transport)) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		t, err := draw.Decode(frame)
		if err != nil {
			c.logger.Warnf("skip frame: %v", err)
			continue
		}
		onTransport(t)
	}
}

// Send writes a transport to the hub. It is safe for concurrent use.
func (c *Client) Send(t draw.Transport) error {
	frame, err := draw.Encode(t)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("send %s: %w", t.Action, err)
	}
	return nil
}

// Close says goodbye to the hub and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.conn.Close()
}

package statusfeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Client reads status frames from a websocket and dispatches them.
type Client struct {
	URL string

	conn       *websocket.Conn
	dispatcher *Dispatcher
	log        *slog.Logger
	writeMu    sync.Mutex
}

// Dial connects to the status feed at url.
func Dial(ctx context.Context, url string, d *Dispatcher, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	log.Info("connected", "url", url)
	return &Client{URL: url, conn: conn, dispatcher: d, log: log}, nil
}

// Run reads and dispatches frames until ctx is cancelled or the server
// closes the connection. A cancelled context or a normal close returns nil.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	for {
		kind, frame, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Info("connection is closed", "url", c.URL)
				return nil
			}
			return fmt.Errorf("read %s: %w", c.URL, err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		c.dispatcher.Dispatch(frame)
	}
}

// Send writes msg as a text frame.
func (c *Client) Send(msg string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return err
	}
	c.log.Debug("message sent", "msg", msg)
	return nil
}

// SendMessage encodes body as a frame of type typ and sends it.
func (c *Client) SendMessage(typ string, body any) error {
	frame, err := Encode(typ, body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", typ, err)
	}
	return c.Send(string(frame))
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	werr := c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.conn.Close()
	if errors.Is(werr, websocket.ErrCloseSent) || errors.Is(werr, net.ErrClosed) {
		werr = nil
	}
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return errors.Join(werr, err)
}

package generators

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

type WSClient struct {
	conn  *websocket.Conn
	url   string
	auth  string
	mutex sync.Mutex
}

func NewWSClient(ctx context.Context, url string, auth string) (*WSClient, error) {
	client := &WSClient{
		url:  url,
		auth: auth,
	}

	if err := client.dial(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *WSClient) dial(ctx context.Context) error {
	header := http.Header{}
	if c.auth != "" {
		header.Set("Authorization", c.auth)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return errors.Wrapf(err, "dial %s", c.url)
	}

	c.conn = conn

	return nil
}

func (c *WSClient) SendJSON(ctx context.Context, v interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.conn.WriteJSON(v)
	if err != nil {
		_ = c.conn.Close()
		if err := c.dial(ctx); err != nil {
			return err
		}

		// Retry sending the message after reconnecting
		if err := c.conn.WriteJSON(v); err != nil {
			return errors.Wrap(err, "write after reconnect")
		}
	}

	return nil
}

// ReadMessages forwards every frame to out until the connection fails or ctx ends.
// out is closed on return.
func (c *WSClient) ReadMessages(ctx context.Context, out chan<- []byte) error {
	defer close(out)

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read")
		}

		select {
		case out <- message:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *WSClient) Close() error {
	c.mutex.Lock()
	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.mutex.Unlock()

	if cerr := c.conn.Close(); cerr != nil && err == nil {
		err = cerr
	}

	return err
}

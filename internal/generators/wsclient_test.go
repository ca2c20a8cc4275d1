package generators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	conn    int32
	payload string
}

// newEchoServer reports every text frame on msgs and the index of every
// connection whose read side fails on closed.
func newEchoServer(t *testing.T) (url string, msgs <-chan frame, closed <-chan int32) {
	t.Helper()

	msgCh := make(chan frame, 8)
	closedCh := make(chan int32, 8)
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		id := conns.Add(1)
		for {
			_, message, err := ws.ReadMessage()
			if err != nil {
				closedCh <- id
				return
			}
			msgCh <- frame{conn: id, payload: string(message)}
		}
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http"), msgCh, closedCh
}

func TestSendJSON(t *testing.T) {
	url, msgs, _ := newEchoServer(t)

	c, err := NewWSClient(context.Background(), url, "")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SendJSON(context.Background(), map[string]string{"method": "accountSubscribe"}))

	select {
	case f := <-msgs:
		assert.Equal(t, int32(1), f.conn)
		assert.JSONEq(t, `{"method":"accountSubscribe"}`, f.payload)
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
}

func TestSendJSON_ReconnectClosesBrokenConn(t *testing.T) {
	url, msgs, closed := newEchoServer(t)

	c, err := NewWSClient(context.Background(), url, "")
	require.NoError(t, err)
	defer c.Close()

	// force the next write on the first connection to fail
	require.NoError(t, c.conn.SetWriteDeadline(time.Now().Add(-time.Second)))

	require.NoError(t, c.SendJSON(context.Background(), map[string]int{"id": 1}))

	select {
	case f := <-msgs:
		assert.Equal(t, int32(2), f.conn)
	case <-time.After(2 * time.Second):
		t.Fatal("message not received on the new connection")
	}

	select {
	case id := <-closed:
		assert.Equal(t, int32(1), id)
	case <-time.After(2 * time.Second):
		t.Fatal("broken connection was left open")
	}
}

func TestReadMessages_Cancel(t *testing.T) {
	url, _, _ := newEchoServer(t)

	c, err := NewWSClient(context.Background(), url, "")
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan []byte)
	done := make(chan error, 1)
	go func() { done <- c.ReadMessages(ctx, out) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadMessages did not return after cancel")
	}

	_, ok := <-out
	assert.False(t, ok)
}

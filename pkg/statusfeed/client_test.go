package statusfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStation starts a websocket server that runs serve on each connection.
func newStation(t *testing.T, serve func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func closeNormally(conn *websocket.Conn) {
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	// wait for the client's close reply
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	conn.ReadMessage()
}

func TestClientRoundTrip(t *testing.T) {
	received := make(chan string, 1)
	url := newStation(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err == nil {
			received <- string(msg)
		}
		for _, frame := range []string{
			`{"type":"StatusTypes.STATE","body":"1"}`,
			`not json`,
			`{"type":"LogTypes.DEBUG","body":"pos {\"x\": 1}"}`,
			`{"type":"Other","body":"ignored"}`,
			`{"type":"StatusTypes.STATE","body":2}`,
		} {
			conn.WriteMessage(websocket.TextMessage, []byte(frame))
		}
		closeNormally(conn)
	})

	var got []string
	record := func(prefix string) HandlerFunc {
		return func(body string) error {
			got = append(got, prefix+body)
			return nil
		}
	}
	d := NewDispatcher(map[string]HandlerFunc{
		TypeState: record("state:"),
		TypeDebug: record("debug:"),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, url, d, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Send("hello station"))
	require.NoError(t, c.Run(ctx))

	assert.Equal(t, "hello station", <-received)
	assert.Equal(t, []string{"state:1", `debug:pos {"x": 1}`, "state:2"}, got)
}

func TestClientRunCancelled(t *testing.T) {
	url := newStation(t, func(conn *websocket.Conn) {
		// hold the connection open until the client goes away
		conn.ReadMessage()
	})

	ctx, cancel := context.WithCancel(context.Background())
	c, err := Dial(ctx, url, NewDispatcher(nil, nil), nil)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, c.Close())
}

func TestClientAbnormalClose(t *testing.T) {
	url := newStation(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CMDTypes.PING"}`))
		conn.UnderlyingConn().Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url, NewDispatcher(nil, nil), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, c.Run(ctx))
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/", NewDispatcher(nil, nil), nil)
	assert.ErrorContains(t, err, "dial ws://127.0.0.1:1/")
}

func TestClientSendMessage(t *testing.T) {
	received := make(chan string, 1)
	url := newStation(t, func(conn *websocket.Conn) {
		if _, msg, err := conn.ReadMessage(); err == nil {
			received <- string(msg)
		}
		closeNormally(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url, NewDispatcher(nil, nil), nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.SendMessage(TypePing, nil))
	require.NoError(t, c.Run(ctx))
	assert.JSONEq(t, `{"type":"CMDTypes.PING","body":null}`, <-received)

	assert.Error(t, c.SendMessage(TypeInfo, func() {}), "unencodable body")
}

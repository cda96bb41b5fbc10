package subcmds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/fsmview/pkg/diagram"
	"github.com/ha1tch/fsmview/pkg/fsm"
	"github.com/ha1tch/fsmview/pkg/monitor"
)

func sampleDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	desc := fsm.New("door")
	desc.AddState(fsm.State{ID: 0, X: 100, Y: 100, Label: "Closed", Start: true})
	desc.AddState(fsm.State{ID: 1, X: 300, Y: 100, Label: "Open", Final: true})
	require.NoError(t, desc.AddTransition(0, 1, "open"))
	d, err := diagram.Build(desc, diagram.DefaultNodeRadius)
	require.NoError(t, err)
	return d
}

// newStation serves frames, then forwards what the client sends to received
// until the client goes away.
func newStation(t *testing.T, frames ...string) (string, <-chan string) {
	t.Helper()
	received := make(chan string, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			select {
			case received <- string(msg):
			default:
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), received
}

func statusRow(s tcell.SimulationScreen) string {
	cells, w, h := s.GetContents()
	var sb strings.Builder
	for _, c := range cells[(h-1)*w:] {
		sb.WriteString(string(c.Runes))
	}
	return sb.String()
}

func TestRunTerminal(t *testing.T) {
	url, received := newStation(t,
		`{"type":"StatusTypes.STATE","body":"1"}`,
		`{"type":"StatusTypes.STATE","body":"1"}`,
	)

	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	defer s.Fini()
	s.SetSize(100, 30)

	errc := make(chan error, 1)
	go func() {
		errc <- runTerminal(context.Background(), s, url, sampleDiagram(t), "door", monitor.DefaultOptions())
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(statusRow(s), "State: 1 (x2)")
	}, 2*time.Second, 10*time.Millisecond)

	assert.Contains(t, statusRow(s), "p ping")
	s.InjectKey(tcell.KeyRune, 'p', tcell.ModNone)
	select {
	case msg := <-received:
		assert.JSONEq(t, `{"type":"CMDTypes.PING","body":null}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("station got no ping")
	}

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errc:
		assert.NoError(t, err, "quitting is a clean exit")
	case <-time.After(2 * time.Second):
		t.Fatal("runTerminal did not stop")
	}
}

func TestRunTerminalCancelled(t *testing.T) {
	url, _ := newStation(t)

	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	defer s.Fini()
	s.SetSize(80, 24)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- runTerminal(ctx, s, url, sampleDiagram(t), "door", monitor.DefaultOptions())
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(statusRow(s), "State: -")
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runTerminal did not stop")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.png", pngFormat},
		{"dir/A.PNG", pngFormat},
		{"a.svg", svgFormat},
	}
	for _, tt := range tests {
		got, err := formatFromPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := formatFromPath("a.jpg")
	assert.ErrorContains(t, err, "must be one of [png, svg]")
}

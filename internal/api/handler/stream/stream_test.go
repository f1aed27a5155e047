package stream

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/newthinker/pickboard/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	ch           chan dashboard.State
	unsubscribed atomic.Bool
}

func newFakeFeed(initial dashboard.State) *fakeFeed {
	f := &fakeFeed{ch: make(chan dashboard.State, 1)}
	f.ch <- initial
	return f
}

func (f *fakeFeed) Subscribe() (<-chan dashboard.State, func()) {
	return f.ch, func() { f.unsubscribed.Store(true) }
}

type versionRenderer struct{}

func (versionRenderer) RenderBoard(w io.Writer, s dashboard.State) error {
	_, err := fmt.Fprintf(w, "<div>v%d loading=%t</div>", s.Version, s.Loading)
	return err
}

type gauge struct{ n atomic.Int64 }

func (g *gauge) StreamOpened() { g.n.Add(1) }
func (g *gauge) StreamClosed() { g.n.Add(-1) }

func dial(t *testing.T, h *Handler) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(h)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, mt)
	return string(data)
}

func TestStream_PushesCurrentAndLaterStates(t *testing.T) {
	feed := newFakeFeed(dashboard.State{Version: 1, Loading: true})
	h := NewHandler(feed, versionRenderer{}, nil)

	conn, cleanup := dial(t, h)
	defer cleanup()

	assert.Equal(t, "<div>v1 loading=true</div>", readText(t, conn))

	feed.ch <- dashboard.State{Version: 2}
	assert.Equal(t, "<div>v2 loading=false</div>", readText(t, conn))
}

func TestStream_SkipsRepeatedVersion(t *testing.T) {
	feed := newFakeFeed(dashboard.State{Version: 3})
	h := NewHandler(feed, versionRenderer{}, nil)

	conn, cleanup := dial(t, h)
	defer cleanup()

	assert.Equal(t, "<div>v3 loading=false</div>", readText(t, conn))

	feed.ch <- dashboard.State{Version: 3}
	feed.ch <- dashboard.State{Version: 4}
	assert.Equal(t, "<div>v4 loading=false</div>", readText(t, conn))
}

func TestStream_CountsAndUnsubscribesOnDisconnect(t *testing.T) {
	feed := newFakeFeed(dashboard.State{Version: 1})
	g := &gauge{}
	h := NewHandler(feed, versionRenderer{}, nil)
	h.SetCounter(g)

	conn, cleanup := dial(t, h)
	defer cleanup()
	readText(t, conn)

	assert.Equal(t, int64(1), g.n.Load())

	conn.Close()
	assert.Eventually(t, func() bool {
		return g.n.Load() == 0 && feed.unsubscribed.Load()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStream_CloseEndsStreams(t *testing.T) {
	feed := newFakeFeed(dashboard.State{Version: 1})
	h := NewHandler(feed, versionRenderer{}, nil)

	conn, cleanup := dial(t, h)
	defer cleanup()
	readText(t, conn)

	h.Close()
	h.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}

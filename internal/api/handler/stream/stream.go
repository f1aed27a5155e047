// Package stream pushes the rendered board to browsers over a websocket
// whenever the board state changes.
package stream

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/newthinker/pickboard/internal/dashboard"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	readLimit    = 512
)

// Subscriber is the board's state feed.
type Subscriber interface {
	Subscribe() (<-chan dashboard.State, func())
}

// Renderer turns a state into the HTML fragment sent to clients.
type Renderer interface {
	RenderBoard(w io.Writer, s dashboard.State) error
}

// Counter tracks connected streams.
type Counter interface {
	StreamOpened()
	StreamClosed()
}

// Handler serves the live board websocket.
type Handler struct {
	board    Subscriber
	render   Renderer
	counter  Counter
	logger   *zap.Logger
	upgrader websocket.Upgrader

	closeOnce sync.Once
	closed    chan struct{}
}

// NewHandler creates a stream handler.
func NewHandler(board Subscriber, render Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		board:  board,
		render: render,
		logger: logger.Named("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		closed: make(chan struct{}),
	}
}

// SetCounter sets the connected-stream counter.
func (h *Handler) SetCounter(c Counter) {
	h.counter = c
}

// Close ends every open stream. Hijacked connections are not tracked by
// http.Server.Shutdown.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.closed) })
}

// ServeHTTP upgrades the connection and writes the board fragment for the
// current state and every later one.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.counter != nil {
		h.counter.StreamOpened()
		defer h.counter.StreamClosed()
	}

	states, unsubscribe := h.board.Subscribe()
	defer unsubscribe()

	h.logger.Debug("stream opened", zap.String("remote", r.RemoteAddr))
	defer h.logger.Debug("stream closed", zap.String("remote", r.RemoteAddr))

	gone := make(chan struct{})
	go h.readPump(conn, gone)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	var (
		buf  bytes.Buffer
		sent bool
		last uint64
	)
	for {
		select {
		case s := <-states:
			if sent && s.Version == last {
				continue
			}
			buf.Reset()
			if err := h.render.RenderBoard(&buf, s); err != nil {
				h.logger.Error("rendering board", zap.Error(err))
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
				h.logger.Debug("stream write failed", zap.Error(err))
				return
			}
			sent, last = true, s.Version

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-gone:
			return

		case <-h.closed:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

// readPump discards client messages and notices disconnects.
func (h *Handler) readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

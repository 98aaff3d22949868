// Package live pushes accepted readings to websocket clients.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"SmartTent.api/internal/models"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

// ErrBufferFull is returned by Publish when the broadcaster lags behind.
var ErrBufferFull = errors.New("live feed buffer full, reading dropped")

// Hub tracks websocket clients and broadcasts readings to them.
type Hub struct {
	logger   *logrus.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	broadcast chan []byte
}

// NewHub creates a Hub that buffers up to buffer pending messages.
func NewHub(logger *logrus.Logger, buffer int) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan []byte, buffer),
	}
}

func (h *Hub) Name() string { return "live" }

// Publish queues t for broadcast. It never blocks.
func (h *Hub) Publish(_ context.Context, t models.Telemetry) error {
	msg, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding telemetry for %s: %w", t.DeviceID, err)
	}
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Run sends queued messages to every client until ctx is done, then closes all connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

func (h *Hub) send(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.WithError(err).WithField("remote", conn.RemoteAddr().String()).Debug("dropping websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the client registered until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("error upgrading to websocket")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.WithField("remote", conn.RemoteAddr().String()).Info("websocket connection established")

	// Incoming frames are ignored; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("websocket connection closed")
}

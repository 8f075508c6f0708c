package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DonaldPG/pytaaa-web/pkg/logger"
)

// UpdateEvent is pushed to websocket clients when model data changes
type UpdateEvent struct {
	Type  string `json:"type"`
	Model string `json:"model"`
	Time  string `json:"time"`
}

// UpdatesHandler is a websocket hub broadcasting data-change events so
// dashboards can refresh without polling. It implements ingest.Notifier.
type UpdatesHandler struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewUpdatesHandler creates a new updates hub
func NewUpdatesHandler(log *logger.Logger) *UpdatesHandler {
	return &UpdatesHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard origins are not restricted
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Serve upgrades the connection and keeps it registered until the
// client disconnects
// GET /api/v1/ws/updates
func (h *UpdatesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.WithField("clients", count).Debug("Websocket client connected")

	// Drain incoming messages to notice disconnects
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ModelUpdated broadcasts a model_updated event to every client
func (h *UpdatesHandler) ModelUpdated(name string) {
	event := UpdateEvent{
		Type:  "model_updated",
		Model: name,
		Time:  time.Now().UTC().Format(time.RFC3339),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount reports the number of connected clients
func (h *UpdatesHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *UpdatesHandler) remove(conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatesHandler_Broadcast(t *testing.T) {
	h := NewUpdatesHandler(testLogger())

	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/updates"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration happens just after the handshake
	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	h.ModelUpdated("naz100_pine")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var event UpdateEvent
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, "model_updated", event.Type)
	assert.Equal(t, "naz100_pine", event.Model)
	assert.NotEmpty(t, event.Time)
}

func TestUpdatesHandler_DisconnectedClientRemoved(t *testing.T) {
	h := NewUpdatesHandler(testLogger())

	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

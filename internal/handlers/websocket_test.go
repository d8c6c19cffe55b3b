package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteries-backend/internal/middleware"
	"mysteries-backend/internal/models"
)

func dialHub(t *testing.T, hub *WebSocketHub, account string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set(middleware.AccountKey, account)
		c.Next()
	}, NewWebSocketHandler(hub).HandleWebSocket)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketConnectAndPing(t *testing.T) {
	hub := NewWebSocketHub()
	defer hub.Close()

	conn := dialHub(t, hub, "alice.near")

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "CONNECTED", msg.Type)
	assert.Equal(t, map[string]interface{}{"account": "alice.near"}, msg.Data)

	require.NoError(t, conn.WriteJSON(Message{Type: "PING"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "PONG", msg.Type)
}

func TestWebSocketReceivesBroadcasts(t *testing.T) {
	hub := NewWebSocketHub()
	defer hub.Close()

	conn := dialHub(t, hub, "alice.near")

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "CONNECTED", msg.Type)

	event := models.NewEvent(models.EventPointsRewarded, map[string]string{"user_id": "1", "amount": "10"})
	event.TxID = "tx-1"
	hub.Broadcast(event)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, string(models.EventPointsRewarded), msg.Type)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "tx-1", data["tx_id"])
	assert.Equal(t, map[string]interface{}{"user_id": "1", "amount": "10"}, data["attributes"])
}

func TestBroadcastAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewWebSocketHub()
	hub.Close()
	hub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Broadcast(models.NewEvent(models.EventUserAllocated, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a closed hub")
	}
}

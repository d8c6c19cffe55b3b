package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mysteries-backend/internal/middleware"
	"mysteries-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeTimeout = 5 * time.Second

// WebSocketHub fans committed state transitions out to every connected
// client. It implements services.Broadcaster.
type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	closeOnce  sync.Once
}

type Client struct {
	Account string
	Conn    *websocket.Conn
	mu      sync.Mutex
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (c *Client) write(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.Conn.WriteJSON(msg)
}

func NewWebSocketHub() *WebSocketHub {
	hub := &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
		done:       make(chan struct{}),
	}

	go hub.run()

	return hub
}

// Broadcast queues event for every client. Events are dropped when the
// queue is full so a slow client never blocks a transition.
func (hub *WebSocketHub) Broadcast(event models.Event) {
	msg := &Message{Type: string(event.Type), Data: event}
	select {
	case hub.broadcast <- msg:
	case <-hub.done:
	default:
		slog.Warn("websocket broadcast queue full, dropping event", "type", event.Type, "tx_id", event.TxID)
	}
}

func (hub *WebSocketHub) Close() {
	hub.closeOnce.Do(func() { close(hub.done) })
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = true
			slog.Debug("websocket client registered", "account", client.Account)

		case client := <-hub.unregister:
			if _, ok := hub.clients[client]; ok {
				delete(hub.clients, client)
				slog.Debug("websocket client unregistered", "account", client.Account)
			}

		case message := <-hub.broadcast:
			for client := range hub.clients {
				if err := client.write(message); err != nil {
					slog.Debug("websocket write failed", "account", client.Account, "error", err)
				}
			}

		case <-hub.done:
			for client := range hub.clients {
				client.Conn.Close()
			}
			return
		}
	}
}

type WebSocketHandler struct {
	hub *WebSocketHub
}

func NewWebSocketHandler(hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	account := c.GetString(middleware.AccountKey)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade to websocket", "error", err)
		return
	}

	client := &Client{
		Account: account,
		Conn:    conn,
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	defer func() {
		select {
		case h.hub.unregister <- client:
		case <-h.hub.done:
		}
		conn.Close()
	}()

	client.write(&Message{
		Type: "CONNECTED",
		Data: gin.H{"account": account},
	})

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket error", "account", account, "error", err)
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		client.write(&Message{
			Type: "PONG",
			Data: gin.H{
				"timestamp": time.Now().Unix(),
			},
		})
	}
}

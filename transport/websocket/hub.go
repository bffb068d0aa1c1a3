package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/wumpus/game/boundary"
	"github.com/wricardo/wumpus/game/handle"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The host listens on loopback by default
		return true
	},
}

// ErrorMessage is sent to a client whose action failed
type ErrorMessage struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

type message struct {
	handle handle.Handle
	data   []byte

	// only, when set, restricts delivery to one client
	only *Client
}

// Client is one browser connection playing a game
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	handle handle.Handle
}

// Hub relays actions from clients to their game and fans the responses out
// to every client attached to the same handle.
type Hub struct {
	service boundary.Service
	log     *zap.Logger

	// Registered clients by handle
	sessions map[handle.Handle]map[*Client]bool
	mu       sync.RWMutex

	broadcast  chan *message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new WebSocket hub. A nil logger disables logging.
func NewHub(service boundary.Service, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		service:    service,
		log:        logger,
		sessions:   make(map[handle.Handle]map[*Client]bool),
		broadcast:  make(chan *message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to game
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, game handle.Handle) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		handle: game,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Broadcast sends data to every client attached to game
func (h *Hub) Broadcast(game handle.Handle, data []byte) {
	h.send(&message{handle: game, data: data})
}

func (h *Hub) send(msg *message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ClientCount returns the number of clients attached to game
func (h *Hub) ClientCount(game handle.Handle) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[game])
}

// registerClient adds a client to a game
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.handle] == nil {
		h.sessions[client.handle] = make(map[*Client]bool)
	}
	h.sessions[client.handle][client] = true

	h.log.Debug("client registered",
		zap.Stringer("handle", client.handle),
		zap.Int("clients", len(h.sessions[client.handle])))
}

// unregisterClient removes a client from a game
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeClient(client)
}

// removeClient must be called with mu held
func (h *Hub) removeClient(client *Client) {
	clients, ok := h.sessions[client.handle]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// Clean up empty games
	if len(clients) == 0 {
		delete(h.sessions, client.handle)
	}

	h.log.Debug("client unregistered",
		zap.Stringer("handle", client.handle),
		zap.Int("clients", len(clients)))
}

// closeAll drops every client so their write pumps send a close frame and
// exit
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.sessions {
		for client := range clients {
			close(client.send)
		}
	}
	h.sessions = make(map[handle.Handle]map[*Client]bool)
}

// broadcastMessage sends a message to all clients of a game
func (h *Hub) broadcastMessage(msg *message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[msg.handle] {
		if msg.only != nil && msg.only != client {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			// Client's send channel is full, drop it
			h.removeClient(client)
		}
	}
}

// play runs one action on the client's game and returns what to send back
func (c *Client) play(action []byte) (data []byte, shared bool) {
	svc := c.hub.service

	if err := svc.Execute(c.handle, action); err != nil {
		data, _ = json.Marshal(ErrorMessage{
			Error:  err.Error(),
			Status: boundary.StatusOf(err).String(),
		})
		return data, false
	}

	resp, err := svc.LastResponseText(c.handle)
	if err != nil {
		data, _ = json.Marshal(ErrorMessage{
			Error:  err.Error(),
			Status: boundary.StatusOf(err).String(),
		})
		return data, false
	}
	return []byte(resp), true
}

// readPump executes every message from the connection as an action
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, action, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket error", zap.Error(err))
			}
			break
		}

		data, shared := c.play(action)
		msg := &message{handle: c.handle, data: data}
		if !shared {
			// Errors only go to the client that caused them
			msg.only = c
		}
		c.hub.send(msg)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

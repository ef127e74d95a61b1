package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

const (
	MessageFrame       = "frame"
	MessageMap         = "map"
	MessageBuildings   = "buildings"
	MessageEnvironment = "environment"
	MessageError       = "error"
)

// Message is the envelope for everything sent over the websocket.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newMessage(kind string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: kind, Payload: data}, nil
}

// Client is one connected renderer. writeMu serialises writes from the
// read and write pumps.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	writeMu sync.Mutex
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans snapshots out to every connected renderer. Inbound messages are
// handed to handler; its reply, if any, goes back to the sender only.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	running    atomic.Bool
	connected  atomic.Int64
	handler    func(Message) (Message, bool)
	logger     *log.Logger
}

func NewHub(logger *log.Logger, handler func(Message) (Message, bool)) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		handler:    handler,
		logger:     logger,
	}
}

// Run owns the client set until ctx is done. Upgrades are refused while it
// is not running.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
		h.connected.Store(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Add(1)
			h.logger.Printf("websocket client connected from %s", client.conn.RemoteAddr())
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connected.Add(-1)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer.
					close(client.send)
					delete(h.clients, client)
					h.connected.Add(-1)
				}
			}
		}
	}
}

// Broadcast queues msg for every client. It never blocks; when the queue
// is full the message is dropped since the next frame supersedes it.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("encode %s message: %v", msg.Type, err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Printf("broadcast queue full, dropping %s message", msg.Type)
	}
}

// Len reports the number of registered clients.
func (h *Hub) Len() int {
	return int(h.connected.Load())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (h *Hub) serveWs(w http.ResponseWriter, r *http.Request) {
	if !h.running.Load() {
		http.Error(w, "frame stream not running", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Printf("websocket read: %v", err)
			}
			return
		}
		if c.hub.handler == nil {
			continue
		}
		reply, ok := c.hub.handler(msg)
		if !ok {
			continue
		}
		data, err := json.Marshal(reply)
		if err != nil {
			c.hub.logger.Printf("encode %s reply: %v", reply.Type, err)
			continue
		}
		if err := c.write(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.write(websocket.TextMessage, message); err != nil {
			return
		}
	}

	_ = c.write(websocket.CloseMessage, []byte{})
}

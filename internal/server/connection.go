package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBuffer = 256
)

var errSpectator = errors.New("spectators cannot act")

// Connection is one websocket client bound to a seat or spectating.
type Connection struct {
	conn   *websocket.Conn
	seat   int
	server *Server
	logger *log.Logger
	send   chan *Message
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func newConnection(conn *websocket.Conn, seat int, s *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:   conn,
		seat:   seat,
		server: s,
		logger: s.logger.WithPrefix("conn").With("seat", seat),
		send:   make(chan *Message, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Connection) start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection. It is safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	c.cancel()
	return c.conn.Close()
}

// enqueue never blocks; a client that falls a full buffer behind is dropped.
func (c *Connection) enqueue(msg *Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- msg:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
	}
}

func (c *Connection) snapshot() *Message {
	snap, legal := c.server.runner.Observe(c.seat)
	seat := c.seat
	return &Message{Type: MessageTypeSnapshot, Seat: &seat, Snapshot: &snap, Legal: legal}
}

func (c *Connection) readPump() {
	defer func() {
		_ = c.Close()
		c.server.unregister(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump writes queued messages. Once the queue drains after an event
// it follows up with a fresh snapshot so the client never renders a
// half-applied state.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}
			if msg.Type == MessageTypeEvent && len(c.send) == 0 {
				if err := c.conn.WriteJSON(c.snapshot()); err != nil {
					c.logger.Debug("Failed to write snapshot", "error", err)
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeAction:
		if c.seat == spectator {
			c.enqueue(newErrorMessage(errSpectator))
			return
		}
		if _, err := c.server.runner.Submit(c.seat, msg.Decision()); err != nil {
			c.enqueue(newErrorMessage(err))
		}
	case MessageTypeSnapshot:
		c.enqueue(c.snapshot())
	default:
		c.enqueue(newErrorMessage(fmt.Errorf("unknown message type %q", msg.Type)))
	}
}

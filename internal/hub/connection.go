package hub

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"creatorhub-realtime/internal/realtime"
	"creatorhub-realtime/pkg/log"
)

// Connection represents one client connection to a subject channel
type Connection struct {
	hub *Hub

	conn *websocket.Conn

	// Subject channel key this connection is registered under
	subject string

	// Buffered channel of outbound frames
	send chan []byte

	pongWait   time.Duration
	pingPeriod time.Duration
	writeWait  time.Duration

	logger log.Logger

	done chan struct{}
}

// NewConnection creates a new Connection instance
func NewConnection(
	hub *Hub,
	conn *websocket.Conn,
	subject string,
	pongWait time.Duration,
	pingPeriod time.Duration,
	writeWait time.Duration,
	logger log.Logger,
) *Connection {
	return &Connection{
		hub:        hub,
		conn:       conn,
		subject:    subject,
		send:       make(chan []byte, 256),
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
		writeWait:  writeWait,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// readPump pumps frames from the client to the hub.
//
// The hub runs readPump in a per-connection goroutine; all reads happen on
// this goroutine so there is at most one reader per connection.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})
	c.conn.SetReadLimit(512)

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Errorf(context.Background(), "read error for subject %s: %v", c.subject, err)
			}
			break
		}

		switch {
		case string(frame) == realtime.ProbeToken:
			// Liveness probe: echo the response token.
			c.enqueue([]byte(realtime.ResponseToken))

		default:
			if id, ok := realtime.IsAckFrame(frame); ok {
				c.logger.Infof(context.Background(), "subject %s acknowledged notification %s", c.subject, id)
				continue
			}
			c.logger.Debugf(context.Background(), "ignoring frame from subject %s: %s", c.subject, string(frame))
		}
	}
}

// enqueue queues an outbound frame, dropping it when the buffer is full.
func (c *Connection) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.logger.Warnf(context.Background(), "send buffer full for subject %s, dropping frame", c.subject)
	}
}

// writePump pumps frames from the hub to the client.
//
// A goroutine running writePump is started per connection; all writes happen
// on this goroutine so there is at most one writer per connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))

			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// Start starts the connection's read and write pumps
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() {
	select {
	case <-c.done:
		// Already closed
		return
	default:
		close(c.done)
		c.conn.Close()
	}
}

package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"creatorhub-realtime/pkg/log"
)

// SubjectKey builds the registry key for a subject binding.
func SubjectKey(subjectKind, subjectID string) string {
	return subjectKind + "/" + subjectID
}

// Frame addresses an outbound frame to every connection of one subject.
type Frame struct {
	Subject string
	Data    []byte
}

// Hub maintains the set of active connections per subject and broadcasts
// frames to them. Multiple connections per subject are allowed (several
// open tabs of the same dashboard).
type Hub struct {
	connections map[string][]*Connection
	mu          sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Frame

	totalConnections  atomic.Int64
	totalFramesSent   atomic.Int64
	totalFramesFailed atomic.Int64

	maxConnections int

	logger log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new Hub instance
func New(logger log.Logger, maxConnections int) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		connections:    make(map[string][]*Connection),
		register:       make(chan *Connection, 100),
		unregister:     make(chan *Connection, 100),
		broadcast:      make(chan *Frame, 1000),
		maxConnections: maxConnections,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info(context.Background(), "Hub shutting down...")
			h.closeAllConnections()
			return

		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case frame := <-h.broadcast:
			h.broadcastToSubject(frame)
		}
	}
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalLocked() >= h.maxConnections {
		h.logger.Warnf(context.Background(), "max connections reached, rejecting subject: %s", conn.subject)
		go conn.Close()
		return
	}

	h.connections[conn.subject] = append(h.connections[conn.subject], conn)
	h.totalConnections.Add(1)

	h.logger.Infof(context.Background(),
		"subject connected: %s (total connections: %d, subject connections: %d)",
		conn.subject,
		h.totalLocked(),
		len(h.connections[conn.subject]),
	)
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	connections, exists := h.connections[conn.subject]
	if !exists {
		return
	}

	for i, c := range connections {
		if c == conn {
			h.connections[conn.subject] = append(connections[:i], connections[i+1:]...)
			h.totalConnections.Add(-1)

			close(conn.send)

			if len(h.connections[conn.subject]) == 0 {
				delete(h.connections, conn.subject)
				h.logger.Infof(context.Background(), "subject disconnected: %s", conn.subject)
			}

			break
		}
	}
}

func (h *Hub) broadcastToSubject(frame *Frame) {
	h.mu.RLock()
	connections, exists := h.connections[frame.Subject]
	h.mu.RUnlock()

	if !exists || len(connections) == 0 {
		// Subject is not connected, skip silently; the realtime layer is
		// best-effort and has no store-and-forward.
		return
	}

	sent := 0
	for _, conn := range connections {
		select {
		case conn.send <- frame.Data:
			sent++
		default:
			h.logger.Warnf(context.Background(), "failed to send frame to subject %s (buffer full)", frame.Subject)
			h.totalFramesFailed.Add(1)
		}
	}

	h.totalFramesSent.Add(int64(sent))
}

// SendToSubject sends a frame to all connections of a specific subject
func (h *Hub) SendToSubject(subject string, data []byte) {
	select {
	case h.broadcast <- &Frame{Subject: subject, Data: data}:
	case <-time.After(time.Second):
		h.logger.Warnf(context.Background(), "timeout sending frame to subject %s", subject)
		h.totalFramesFailed.Add(1)
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for subject, connections := range h.connections {
		for _, conn := range connections {
			conn.Close()
		}
		h.logger.Infof(context.Background(), "closed all connections for subject: %s", subject)
	}

	h.connections = make(map[string][]*Connection)
}

// Stats represents hub statistics
type Stats struct {
	ActiveConnections int   `json:"active_connections"`
	UniqueSubjects    int   `json:"unique_subjects"`
	TotalFramesSent   int64 `json:"total_frames_sent"`
	TotalFramesFailed int64 `json:"total_frames_failed"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return Stats{
		ActiveConnections: h.totalLocked(),
		UniqueSubjects:    len(h.connections),
		TotalFramesSent:   h.totalFramesSent.Load(),
		TotalFramesFailed: h.totalFramesFailed.Load(),
	}
}

// totalLocked returns total connections (must be called with lock held)
func (h *Hub) totalLocked() int {
	total := 0
	for _, connections := range h.connections {
		total += len(connections)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

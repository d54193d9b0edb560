package realtime

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"creatorhub-realtime/pkg/log"
)

// Status represents the connection status of a session
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Config holds transport session configuration
type Config struct {
	// Origin is the HTTP origin of the notification service. The realtime
	// scheme is derived from it: https maps to wss, http maps to ws.
	Origin string

	// ChannelPath is the base path of the realtime channel.
	ChannelPath string

	// Token is an opaque auth token appended as a query parameter. The
	// session performs no authentication itself.
	Token string

	HandshakeTimeout  time.Duration
	HeartbeatInterval time.Duration
	PongWait          time.Duration
	WriteWait         time.Duration

	Backoff Backoff
}

func (c *Config) withDefaults() {
	if c.ChannelPath == "" {
		c.ChannelPath = "/realtime"
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.Backoff == (Backoff{}) {
		c.Backoff = DefaultBackoff()
	}
}

// ChannelURL derives the realtime channel URL for a subject from the
// service origin.
func ChannelURL(origin, channelPath, subjectKind, subjectID, token string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "wss", "ws":
		// Already a realtime scheme
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidOrigin, u.Scheme)
	}

	u.Path = path.Join(u.Path, channelPath, subjectKind, subjectID)

	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Session owns exactly one websocket connection to a per-subject channel,
// together with its heartbeat monitor and reconnection controller. The
// identity binding is immutable for the lifetime of the session; changing
// identity requires tearing down and creating a new Session.
type Session struct {
	subjectKind string
	subjectID   string
	cfg         Config
	logger      log.Logger
	dialer      *websocket.Dialer

	onFrame  func(frame []byte)
	onStatus func(status Status)

	mu             sync.Mutex
	status         Status
	attempts       int
	conn           *websocket.Conn
	generation     int
	reconnectTimer *time.Timer
	heartbeatStop  chan struct{}
	closed         bool

	// writeMu serializes writes; the heartbeat goroutine and callers of
	// Send may write concurrently.
	writeMu sync.Mutex
}

// NewSession creates a Session bound to the given subject. Open must be
// called to establish the connection.
func NewSession(subjectKind, subjectID string, cfg Config, logger log.Logger) *Session {
	cfg.withDefaults()
	return &Session{
		subjectKind: subjectKind,
		subjectID:   subjectID,
		cfg:         cfg,
		logger:      logger,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		status: StatusDisconnected,
	}
}

// OnFrame registers the inbound frame handler. Must be set before Open.
// The handler is responsible for parsing; liveness-response frames are
// swallowed before reaching it.
func (s *Session) OnFrame(fn func(frame []byte)) {
	s.onFrame = fn
}

// OnStatus registers a listener notified on every status transition.
// Must be set before Open.
func (s *Session) OnStatus(fn func(status Status)) {
	s.onStatus = fn
}

// Open establishes the connection. A session without a subject binding is
// a no-op. Open may be called again after reconnection attempts have been
// exhausted; it resets the controller and dials anew.
func (s *Session) Open() {
	if s.subjectKind == "" || s.subjectID == "" {
		s.logger.Warn(context.Background(), "realtime session has no subject binding, not connecting")
		return
	}

	s.mu.Lock()
	if s.closed || s.status != StatusDisconnected {
		s.mu.Unlock()
		return
	}
	s.attempts = 0
	s.startDialLocked()
	s.mu.Unlock()

	s.emitStatus(StatusConnecting)
}

// Send writes a frame to the peer. Frames are dropped silently when the
// session is not connected; there is no store-and-forward for outbound
// control frames.
func (s *Session) Send(frame []byte) {
	s.mu.Lock()
	conn := s.conn
	connected := s.status == StatusConnected
	s.mu.Unlock()

	if !connected || conn == nil {
		s.logger.Debugf(context.Background(), "dropping outbound frame for %s/%s: not connected", s.subjectKind, s.subjectID)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		s.logger.Errorf(context.Background(), "write error for %s/%s: %v", s.subjectKind, s.subjectID, err)
	}
}

// Close tears the session down deterministically: any pending reconnection
// attempt and the heartbeat monitor are cancelled before the underlying
// connection is closed. No reconnection follows. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.stopHeartbeatLocked()
	conn := s.conn
	s.conn = nil
	wasDisconnected := s.status == StatusDisconnected
	s.status = StatusDisconnected
	s.mu.Unlock()

	if conn != nil {
		s.writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		conn.Close()
	}

	if !wasDisconnected {
		s.emitStatus(StatusDisconnected)
	}
}

// Status returns the current connection status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Attempts returns the current reconnection attempt counter.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// startDialLocked transitions to connecting and dials in a new goroutine.
// Caller holds s.mu and emits the connecting status after unlocking.
func (s *Session) startDialLocked() {
	s.status = StatusConnecting
	s.generation++
	go s.dial(s.generation)
}

func (s *Session) dial(gen int) {
	ctx := context.Background()

	channelURL, err := ChannelURL(s.cfg.Origin, s.cfg.ChannelPath, s.subjectKind, s.subjectID, s.cfg.Token)
	if err != nil {
		s.logger.Errorf(ctx, "cannot derive channel URL from origin %q: %v", s.cfg.Origin, err)
		s.handleClosed(gen)
		return
	}

	conn, _, err := s.dialer.Dial(channelURL, nil)

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		s.mu.Unlock()
		s.logger.Errorf(ctx, "connect failed for %s/%s: %v", s.subjectKind, s.subjectID, err)
		s.handleClosed(gen)
		return
	}

	s.conn = conn
	s.status = StatusConnected
	s.attempts = 0
	s.startHeartbeatLocked(gen)
	s.mu.Unlock()

	s.logger.Infof(ctx, "realtime channel connected for %s/%s", s.subjectKind, s.subjectID)
	s.emitStatus(StatusConnected)

	go s.readPump(gen, conn)
}

// readPump reads frames until the connection dies. Receipt of the literal
// liveness-response token extends the read deadline and is swallowed; every
// other frame is dispatched to the frame handler.
func (s *Session) readPump(gen int, conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Errorf(context.Background(), "read error for %s/%s: %v", s.subjectKind, s.subjectID, err)
			}
			break
		}

		if string(frame) == ResponseToken {
			conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
			continue
		}

		if s.onFrame != nil {
			s.onFrame(frame)
		}
	}

	conn.Close()
	s.handleClosed(gen)
}

// handleClosed runs the unexpected-closure path: stop the heartbeat, move
// to disconnected and hand over to the reconnection controller. Stale
// generations (an intervening Open or Close) are ignored.
func (s *Session) handleClosed(gen int) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}

	s.stopHeartbeatLocked()
	s.conn = nil
	s.status = StatusDisconnected
	s.scheduleReconnectLocked()
	s.mu.Unlock()

	s.emitStatus(StatusDisconnected)
}

// scheduleReconnectLocked schedules the next attempt, or gives up once the
// attempt cap is reached. The session then stays disconnected until an
// external Open.
func (s *Session) scheduleReconnectLocked() {
	ctx := context.Background()

	if !s.cfg.Backoff.Allowed(s.attempts) {
		s.logger.Warnf(ctx, "reconnect attempts exhausted for %s/%s after %d attempts, staying disconnected",
			s.subjectKind, s.subjectID, s.attempts)
		return
	}

	delay := s.cfg.Backoff.Delay(s.attempts)
	s.logger.Infof(ctx, "scheduling reconnect for %s/%s in %s (attempt %d/%d)",
		s.subjectKind, s.subjectID, delay, s.attempts+1, s.cfg.Backoff.MaxAttempts)

	s.reconnectTimer = time.AfterFunc(delay, s.reconnectNow)
}

func (s *Session) reconnectNow() {
	s.mu.Lock()
	if s.closed || s.status != StatusDisconnected {
		s.mu.Unlock()
		return
	}
	s.reconnectTimer = nil
	s.attempts++
	s.startDialLocked()
	s.mu.Unlock()

	s.emitStatus(StatusConnecting)
}

// startHeartbeatLocked starts the liveness probe loop for one connection
// generation. Caller holds s.mu. Any prior monitor is stopped first so a
// leaked ticker can never survive across reconnects.
func (s *Session) startHeartbeatLocked(gen int) {
	s.stopHeartbeatLocked()
	stop := make(chan struct{})
	s.heartbeatStop = stop

	go func() {
		ticker := time.NewTicker(s.cfg.HeartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				live := !s.closed && gen == s.generation && s.status == StatusConnected
				s.mu.Unlock()
				if !live {
					return
				}
				s.Send([]byte(ProbeToken))
			case <-stop:
				return
			}
		}
	}()
}

func (s *Session) stopHeartbeatLocked() {
	if s.heartbeatStop != nil {
		close(s.heartbeatStop)
		s.heartbeatStop = nil
	}
}

func (s *Session) emitStatus(status Status) {
	if s.onStatus != nil {
		s.onStatus(status)
	}
}

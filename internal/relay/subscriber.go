package relay

import (
	"context"
	"strings"
	"sync"
	"time"

	redis_client "github.com/redis/go-redis/v9"

	"creatorhub-realtime/internal/hub"
	"creatorhub-realtime/internal/realtime"
	"creatorhub-realtime/pkg/log"
	"creatorhub-realtime/pkg/redis"
)

// channelPattern matches per-subject notification channels published by the
// backend: notify:<subjectKind>:<subjectId>
const channelPattern = "notify:*"

// Subscriber relays redis pub/sub notification events into the hub
type Subscriber struct {
	client *redis.Client
	hub    *hub.Hub
	logger log.Logger

	pubsub *redis_client.PubSub

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu            sync.RWMutex
	lastMessageAt time.Time
}

// NewSubscriber creates a new relay Subscriber
func NewSubscriber(client *redis.Client, h *hub.Hub, logger log.Logger) *Subscriber {
	ctx, cancel := context.WithCancel(context.Background())

	return &Subscriber{
		client: client,
		hub:    h,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start subscribes to the notification pattern and begins relaying
func (s *Subscriber) Start() error {
	s.pubsub = s.client.PSubscribe(s.ctx, channelPattern)

	s.logger.Infof(s.ctx, "relay subscriber started, listening on pattern: %s", channelPattern)

	go s.listen()

	return nil
}

func (s *Subscriber) listen() {
	defer close(s.done)

	ch := s.pubsub.Channel()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info(context.Background(), "relay subscriber shutting down...")
			return

		case msg, ok := <-ch:
			if !ok {
				s.logger.Error(s.ctx, "redis pub/sub channel closed")
				return
			}
			s.handleMessage(msg.Channel, msg.Payload)
		}
	}
}

// handleMessage relays one published event to the matching subject.
func (s *Subscriber) handleMessage(channel, payload string) {
	s.mu.Lock()
	s.lastMessageAt = time.Now()
	s.mu.Unlock()

	// notify:<subjectKind>:<subjectId>
	parts := strings.SplitN(channel, ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		s.logger.Warnf(s.ctx, "invalid channel format: %s", channel)
		return
	}
	subjectKind, subjectID := parts[1], parts[2]

	// Validate the envelope before fanning it out; a malformed publish is
	// dropped here rather than on every client.
	if _, err := realtime.ParseEnvelope([]byte(payload)); err != nil {
		s.logger.Warnf(s.ctx, "dropping malformed event on %s: %v", channel, err)
		return
	}

	s.hub.SendToSubject(hub.SubjectKey(subjectKind, subjectID), []byte(payload))
}

// GetHealthInfo returns subscriber health information
func (s *Subscriber) GetHealthInfo() (active bool, lastMessageAt time.Time, pattern string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pubsub != nil, s.lastMessageAt, channelPattern
}

// Shutdown gracefully shuts down the subscriber
func (s *Subscriber) Shutdown(ctx context.Context) error {
	s.cancel()

	if s.pubsub != nil {
		s.pubsub.Close()
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"creatorhub-realtime/internal/classify"
	"creatorhub-realtime/internal/realtime"
	"creatorhub-realtime/internal/store"
	"creatorhub-realtime/pkg/log"
)

// Config holds provider configuration
type Config struct {
	// Realtime configures the underlying transport session.
	Realtime realtime.Config

	// MaxEntries is the store retention ceiling; zero means the default.
	MaxEntries int
}

// Provider owns one transport session and one notification store for a
// single (subjectKind, subjectId) binding. It is the single source of truth
// the presentation surface renders from; downstream components depend only
// on this contract and never reach into session internals.
//
// Several consumers may share one provider through Acquire/Release; the
// session is torn down when the last reference is released.
type Provider struct {
	subjectKind string
	subjectID   string
	session     *realtime.Session
	store       *store.Store
	toasts      ToastDispatcher
	logger      log.Logger

	mu     sync.Mutex
	refs   int
	closed bool
}

// New creates a Provider bound to the given subject. The returned provider
// holds one reference; call Open to connect.
func New(subjectKind, subjectID string, cfg Config, toasts ToastDispatcher, logger log.Logger) *Provider {
	p := &Provider{
		subjectKind: subjectKind,
		subjectID:   subjectID,
		store:       store.New(cfg.MaxEntries),
		toasts:      toasts,
		logger:      logger,
		refs:        1,
	}

	p.session = realtime.NewSession(subjectKind, subjectID, cfg.Realtime, logger)
	p.session.OnFrame(p.handleFrame)
	p.session.OnStatus(func(status realtime.Status) {
		logger.Debugf(context.Background(), "realtime status for %s/%s: %s", subjectKind, subjectID, status)
	})

	return p
}

// Open establishes the realtime connection.
func (p *Provider) Open() {
	p.session.Open()
}

// Connected reports whether the realtime channel is currently live.
func (p *Provider) Connected() bool {
	return p.session.Status() == realtime.StatusConnected
}

// Notifications returns the stored notifications, newest first.
func (p *Provider) Notifications() []store.Notification {
	return p.store.Notifications()
}

// UnreadCount returns the number of unread notifications.
func (p *Provider) UnreadCount() int {
	return p.store.UnreadCount()
}

// MarkRead marks one notification as read.
func (p *Provider) MarkRead(id string) {
	p.store.MarkRead(id)
}

// MarkAllRead marks every notification as read.
func (p *Provider) MarkAllRead() {
	p.store.MarkAllRead()
}

// Clear empties the store.
func (p *Provider) Clear() {
	p.store.Clear()
}

// Remove dismisses one notification.
func (p *Provider) Remove(id string) {
	p.store.Remove(id)
}

// SendAck sends an acknowledgment frame for a notification. Dropped
// silently when disconnected.
func (p *Provider) SendAck(id string) {
	p.session.Send(realtime.AckFrame(id))
}

// OnChange registers a callback invoked after every store mutation.
func (p *Provider) OnChange(fn func()) {
	p.store.OnChange(fn)
}

// Acquire adds a reference for an additional consumer of the same stream.
func (p *Provider) Acquire() *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refs++
	return p
}

// Release drops one reference. The session is closed when the last
// reference is released.
func (p *Provider) Release() {
	p.mu.Lock()
	p.refs--
	last := p.refs <= 0 && !p.closed
	if last {
		p.closed = true
	}
	p.mu.Unlock()

	if last {
		p.session.Close()
	}
}

// Close tears the provider down unconditionally, regardless of references.
// Used on unmount and on identity change; a new identity requires a new
// Provider.
func (p *Provider) Close() {
	p.mu.Lock()
	p.closed = true
	p.refs = 0
	p.mu.Unlock()

	p.session.Close()
}

// handleFrame turns a raw inbound frame into a stored notification and a
// toast. Malformed frames are logged and dropped without disturbing the
// session.
func (p *Provider) handleFrame(frame []byte) {
	env, err := realtime.ParseEnvelope(frame)
	if err != nil {
		p.logger.Warnf(context.Background(), "dropping malformed frame for %s/%s: %v", p.subjectKind, p.subjectID, err)
		return
	}

	fields := classify.Classify(env.Type)

	n := store.Notification{
		ID:         newNotificationID(env.Type, env.Timestamp),
		Kind:       env.Type,
		Icon:       fields.Icon,
		Title:      fields.Title,
		Severity:   fields.Severity,
		Message:    env.Message(),
		Payload:    env.Data,
		ReceivedAt: time.Now(),
	}

	p.store.Append(n)

	if p.toasts != nil {
		p.toasts.Show(n, DisplayDuration(n.Severity))
	}
}

// newNotificationID derives a locally unique id from the event kind, the
// sender timestamp and a random suffix, so duplicate timestamps never
// collide. Ids are generated once at classification time; duplicate raw
// events deliberately produce duplicate notifications.
func newNotificationID(kind string, emittedAt time.Time) string {
	return fmt.Sprintf("%s-%d-%s", kind, emittedAt.UnixMilli(), uuid.NewString()[:8])
}

package notify

import (
	"strings"
	"sync"
	"testing"
	"time"

	"creatorhub-realtime/internal/realtime"
	"creatorhub-realtime/internal/store"
	"creatorhub-realtime/internal/types"
	"creatorhub-realtime/pkg/log"
)

var testLogger = log.Init(log.ZapConfig{
	Level:    "error",
	Mode:     log.ModeDevelopment,
	Encoding: log.EncodingConsole,
})

// recordingToasts captures dispatched toasts for assertions.
type recordingToasts struct {
	mu        sync.Mutex
	shown     []store.Notification
	durations []time.Duration
}

func (r *recordingToasts) Show(n store.Notification, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, n)
	r.durations = append(r.durations, duration)
}

func (r *recordingToasts) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shown)
}

func newTestProvider(toasts ToastDispatcher) *Provider {
	return New("creator", "c1", Config{
		Realtime: realtime.Config{Origin: "http://localhost:0"},
	}, toasts, testLogger)
}

func TestHandleFrameProposalApproved(t *testing.T) {
	toasts := &recordingToasts{}
	p := newTestProvider(toasts)
	defer p.Close()

	p.handleFrame([]byte(`{"type":"proposal_approved","data":{"message":"Your proposal was approved","project_id":"p1"},"timestamp":"2024-01-01T00:00:00Z"}`))

	notifications := p.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("stored %d notifications, want 1", len(notifications))
	}

	n := notifications[0]
	if n.Severity != types.SeveritySuccess {
		t.Errorf("severity = %q, want %q", n.Severity, types.SeveritySuccess)
	}
	if !strings.Contains(n.Title, "Approved") {
		t.Errorf("title %q does not contain 'Approved'", n.Title)
	}
	if n.Message != "Your proposal was approved" {
		t.Errorf("message = %q, want %q", n.Message, "Your proposal was approved")
	}
	if pid, _ := n.Payload["project_id"].(string); pid != "p1" {
		t.Errorf("payload project_id = %v, want p1", n.Payload["project_id"])
	}
	if p.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", p.UnreadCount())
	}

	if toasts.count() != 1 {
		t.Fatalf("dispatched %d toasts, want 1", toasts.count())
	}
	if toasts.durations[0] != 5*time.Second {
		t.Errorf("toast duration = %s, want 5s", toasts.durations[0])
	}
}

func TestHandleFrameUnknownKindSurfacesFallback(t *testing.T) {
	p := newTestProvider(nil)
	defer p.Close()

	p.handleFrame([]byte(`{"type":"never_seen_before","data":{"message":"hi"},"timestamp":"2024-01-01T00:00:00Z"}`))

	notifications := p.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("stored %d notifications, want 1 (unknown kinds are never dropped)", len(notifications))
	}
	n := notifications[0]
	if n.Title != "Notification" {
		t.Errorf("title = %q, want fallback %q", n.Title, "Notification")
	}
	if n.Severity != types.SeverityInfo {
		t.Errorf("severity = %q, want %q", n.Severity, types.SeverityInfo)
	}
	if n.Kind != "never_seen_before" {
		t.Errorf("kind = %q, want the raw kind preserved", n.Kind)
	}
}

func TestHandleFrameMalformedIsDropped(t *testing.T) {
	toasts := &recordingToasts{}
	p := newTestProvider(toasts)
	defer p.Close()

	p.handleFrame([]byte("not json at all"))
	p.handleFrame([]byte(`{"data":{"message":"no type"}}`))

	if got := len(p.Notifications()); got != 0 {
		t.Errorf("stored %d notifications, want 0", got)
	}
	if p.UnreadCount() != 0 {
		t.Errorf("UnreadCount() = %d, want 0", p.UnreadCount())
	}
	if toasts.count() != 0 {
		t.Errorf("dispatched %d toasts, want 0", toasts.count())
	}
}

func TestHandleFrameGeneratesUniqueIDs(t *testing.T) {
	p := newTestProvider(nil)
	defer p.Close()

	// Same kind and same sender timestamp twice: at-most-once transport
	// semantics mean both are surfaced, with distinct local ids.
	frame := []byte(`{"type":"system_alert","data":{"message":"dup"},"timestamp":"2024-01-01T00:00:00Z"}`)
	p.handleFrame(frame)
	p.handleFrame(frame)

	notifications := p.Notifications()
	if len(notifications) != 2 {
		t.Fatalf("stored %d notifications, want 2", len(notifications))
	}
	if notifications[0].ID == notifications[1].ID {
		t.Errorf("duplicate notification ids: %q", notifications[0].ID)
	}
}

func TestProviderMutationsDelegate(t *testing.T) {
	p := newTestProvider(nil)
	defer p.Close()

	p.handleFrame([]byte(`{"type":"system_alert","data":{"message":"a"},"timestamp":"2024-01-01T00:00:00Z"}`))
	p.handleFrame([]byte(`{"type":"system_alert","data":{"message":"b"},"timestamp":"2024-01-01T00:00:00Z"}`))

	id := p.Notifications()[0].ID
	p.MarkRead(id)
	if p.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", p.UnreadCount())
	}

	p.MarkAllRead()
	if p.UnreadCount() != 0 {
		t.Errorf("UnreadCount() = %d, want 0", p.UnreadCount())
	}

	p.Remove(id)
	if got := len(p.Notifications()); got != 1 {
		t.Errorf("after Remove: %d notifications, want 1", got)
	}

	p.Clear()
	if got := len(p.Notifications()); got != 0 {
		t.Errorf("after Clear: %d notifications, want 0", got)
	}
}

func TestSendAckWhenDisconnectedDoesNotPanic(t *testing.T) {
	p := newTestProvider(nil)
	defer p.Close()
	p.SendAck("n-1")
}

func TestReleaseClosesOnLastReference(t *testing.T) {
	p := newTestProvider(nil)

	shared := p.Acquire()
	p.Release()
	if p.Connected() {
		t.Fatal("provider should not be connected in this test")
	}

	// One reference still held; a new consumer can still acquire.
	shared.Acquire()
	shared.Release()
	shared.Release()

	// All references gone: the session is closed and stays down.
	shared.Open()
	time.Sleep(20 * time.Millisecond)
	if shared.Connected() {
		t.Error("session should be closed after the last release")
	}
}

func TestOnChangeFiresOnAppend(t *testing.T) {
	p := newTestProvider(nil)
	defer p.Close()

	changes := 0
	p.OnChange(func() { changes++ })

	p.handleFrame([]byte(`{"type":"connected","data":{"message":"welcome"},"timestamp":"2024-01-01T00:00:00Z"}`))

	if changes != 1 {
		t.Errorf("onChange fired %d times, want 1", changes)
	}
}

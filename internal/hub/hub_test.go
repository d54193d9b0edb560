package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"creatorhub-realtime/internal/notify"
	"creatorhub-realtime/internal/realtime"
	"creatorhub-realtime/internal/types"
	"creatorhub-realtime/pkg/jwt"
	"creatorhub-realtime/pkg/log"
)

var testLogger = log.Init(log.ZapConfig{
	Level:    "error",
	Mode:     log.ModeDevelopment,
	Encoding: log.EncodingConsole,
})

// startHub runs a hub with its channel handler mounted on an httptest
// server and returns both.
func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := New(testLogger, 100)
	go h.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h.Shutdown(ctx)
	})

	handler := NewHandler(h, jwt.NewValidator(jwt.Config{}), testLogger, WSConfig{
		PongWait:   60 * time.Second,
		PingPeriod: 30 * time.Second,
		WriteWait:  10 * time.Second,
	})

	router := gin.New()
	handler.SetupRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return h, srv
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestHandlerRejectsInvalidSubjectKind(t *testing.T) {
	_, srv := startHub(t)

	resp, err := http.Get(srv.URL + "/realtime/banana/c1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestEndToEndDelivery(t *testing.T) {
	h, srv := startHub(t)

	provider := notify.New("creator", "c1", notify.Config{
		Realtime: realtime.Config{Origin: srv.URL},
	}, nil, testLogger)
	defer provider.Close()

	provider.Open()

	// The hub sends the welcome event on join.
	waitFor(t, 2*time.Second, func() bool {
		return provider.Connected() && len(provider.Notifications()) >= 1
	}, "welcome event never arrived")

	welcome := provider.Notifications()[0]
	if welcome.Kind != string(types.EventConnected) {
		t.Errorf("welcome kind = %q, want %q", welcome.Kind, types.EventConnected)
	}

	// An event broadcast for the subject reaches the provider classified.
	env := realtime.Envelope{
		Type:      string(types.EventProposalApproved),
		Data:      map[string]any{"message": "Your proposal was approved", "project_id": "p1"},
		Timestamp: time.Now().UTC(),
	}
	data, err := env.ToJSON()
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	h.SendToSubject(SubjectKey("creator", "c1"), data)

	waitFor(t, 2*time.Second, func() bool {
		return len(provider.Notifications()) >= 2
	}, "broadcast event never arrived")

	n := provider.Notifications()[0]
	if n.Severity != types.SeveritySuccess {
		t.Errorf("severity = %q, want %q", n.Severity, types.SeveritySuccess)
	}
	if n.Message != "Your proposal was approved" {
		t.Errorf("message = %q, want %q", n.Message, "Your proposal was approved")
	}

	// Acks are sent over the same channel and must not error.
	provider.SendAck(n.ID)

	if provider.UnreadCount() != 2 {
		t.Errorf("UnreadCount() = %d, want 2", provider.UnreadCount())
	}
}

func TestBroadcastToOtherSubjectIsNotDelivered(t *testing.T) {
	h, srv := startHub(t)

	provider := notify.New("creator", "c1", notify.Config{
		Realtime: realtime.Config{Origin: srv.URL},
	}, nil, testLogger)
	defer provider.Close()

	provider.Open()
	waitFor(t, 2*time.Second, func() bool {
		return provider.Connected() && len(provider.Notifications()) == 1
	}, "welcome event never arrived")

	env := realtime.Envelope{
		Type:      string(types.EventSystemAlert),
		Data:      map[string]any{"message": "not for you"},
		Timestamp: time.Now().UTC(),
	}
	data, _ := env.ToJSON()
	h.SendToSubject(SubjectKey("creator", "someone-else"), data)
	h.SendToSubject(SubjectKey("admin", "c1"), data)

	time.Sleep(100 * time.Millisecond)
	if got := len(provider.Notifications()); got != 1 {
		t.Errorf("notifications = %d, want 1 (only the welcome event)", got)
	}
}

func TestHubStats(t *testing.T) {
	h, srv := startHub(t)

	provider := notify.New("creator", "c1", notify.Config{
		Realtime: realtime.Config{Origin: srv.URL},
	}, nil, testLogger)
	defer provider.Close()

	provider.Open()
	waitFor(t, 2*time.Second, func() bool {
		return h.GetStats().ActiveConnections == 1
	}, "connection never registered")

	stats := h.GetStats()
	if stats.UniqueSubjects != 1 {
		t.Errorf("UniqueSubjects = %d, want 1", stats.UniqueSubjects)
	}

	provider.Close()
	waitFor(t, 2*time.Second, func() bool {
		return h.GetStats().ActiveConnections == 0
	}, "connection never unregistered")
}

// One provider shared by several consumers holds a single hub connection.
func TestSharedProviderHoldsOneConnection(t *testing.T) {
	h, srv := startHub(t)

	provider := notify.New("creator", "c1", notify.Config{
		Realtime: realtime.Config{Origin: srv.URL},
	}, nil, testLogger)

	bell := provider.Acquire()
	panel := provider.Acquire()

	provider.Open()
	waitFor(t, 2*time.Second, func() bool {
		return h.GetStats().ActiveConnections == 1
	}, "connection never registered")

	bell.Release()
	panel.Release()
	time.Sleep(50 * time.Millisecond)
	if h.GetStats().ActiveConnections != 1 {
		t.Fatal("session closed while a reference was still held")
	}

	provider.Release()
	waitFor(t, 2*time.Second, func() bool {
		return h.GetStats().ActiveConnections == 0
	}, "session not closed after last release")
}

package notify

import (
	"time"

	"creatorhub-realtime/internal/store"
	"creatorhub-realtime/internal/types"
)

// ToastDispatcher is the transient presentation surface. The UI layer
// supplies an implementation; the provider never blocks on it.
type ToastDispatcher interface {
	Show(n store.Notification, duration time.Duration)
}

// Transient display durations per severity. These are presentation
// configuration, not part of the store's durable state.
const (
	durationInfo    = 4 * time.Second
	durationSuccess = 5 * time.Second
	durationWarning = 7 * time.Second
	durationError   = 10 * time.Second
)

// DisplayDuration returns how long a transient toast for the given severity
// stays visible. Higher severities use longer-lived displays.
func DisplayDuration(severity types.Severity) time.Duration {
	switch severity {
	case types.SeveritySuccess:
		return durationSuccess
	case types.SeverityWarning:
		return durationWarning
	case types.SeverityError:
		return durationError
	default:
		return durationInfo
	}
}

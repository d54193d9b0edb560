package realtime

import (
	"encoding/json"
	"time"
)

// Liveness tokens exchanged as literal text frames. The response token is
// swallowed by the heartbeat monitor and never reaches the frame handler.
const (
	ProbeToken    = "ping"
	ResponseToken = "pong"
)

const ackPrefix = "ack:"

// Envelope is the wire-level structure of a non-liveness inbound frame.
type Envelope struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// ParseEnvelope decodes an inbound frame. Malformed frames are reported as
// errors so the caller can log and drop them.
func ParseEnvelope(frame []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(frame, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Validate validates the envelope structure
func (e *Envelope) Validate() error {
	if e.Type == "" {
		return ErrInvalidEnvelope
	}
	return nil
}

// Message returns the human-readable message carried in the payload, if any.
func (e *Envelope) Message() string {
	if e.Data == nil {
		return ""
	}
	msg, _ := e.Data["message"].(string)
	return msg
}

// ToJSON converts the envelope to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// AckFrame builds the outbound acknowledgment frame for a notification id.
func AckFrame(id string) []byte {
	return []byte(ackPrefix + id)
}

// IsAckFrame reports whether a frame is an acknowledgment and returns the
// acknowledged notification id.
func IsAckFrame(frame []byte) (string, bool) {
	s := string(frame)
	if len(s) > len(ackPrefix) && s[:len(ackPrefix)] == ackPrefix {
		return s[len(ackPrefix):], true
	}
	return "", false
}

package realtime

import "errors"

var (
	ErrInvalidEnvelope = errors.New("invalid envelope")
	ErrInvalidOrigin   = errors.New("invalid service origin")
)

package logging

import "github.com/google/uuid"

// NewTraceID mints a fresh trace identifier.
func NewTraceID() string {
	return uuid.NewString()
}

// NewRequestID mints a fresh request identifier for pairing an HTTP
// request log with its response log.
func NewRequestID() string {
	return uuid.NewString()
}

// NewLogID mints the per-record identifier attached to every log entry.
func NewLogID() string {
	return uuid.NewString()
}

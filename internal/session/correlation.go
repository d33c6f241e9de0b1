// Package session stamps a per-run correlation id onto structured logs, the
// way a request id threads through a server's log lines.
package session

import "github.com/google/uuid"

// NewCorrelationID returns a fresh run identifier for log correlation. It
// carries no meaning beyond uniqueness within a process's lifetime.
func NewCorrelationID() string {
	return uuid.New().String()
}

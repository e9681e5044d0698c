package check

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRunInProgress is returned by Orchestrator.Run when another run is active.
	ErrRunInProgress = errors.New("a check run is already in progress")

	// ErrNoProxies is returned when the proxy list yields no usable endpoint.
	ErrNoProxies = errors.New("proxy list is empty")

	// ErrNoCandidates is returned when no session files were discovered.
	ErrNoCandidates = errors.New("no session files found")

	// ErrMalformedCredential marks metadata that is unreadable or incomplete.
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrUnregistered is returned by network adapters when the remote side
	// reports the session's authorization key as revoked or unknown.
	ErrUnregistered = errors.New("session is unregistered")
)

// RateLimitError is returned by network adapters when the remote side asks
// the client to wait before retrying.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

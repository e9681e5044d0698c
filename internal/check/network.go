package check

import (
	"context"
	"time"
)

// AuthState is the authorization status reported by the remote endpoint.
type AuthState int

const (
	StateAuthorized AuthState = iota
	StateUnauthorized
	StateRateLimited
	StateUnregistered
)

// AuthStatus is the result of Conn.CheckAuthorized. RetryAfter is set only
// for StateRateLimited.
type AuthStatus struct {
	State      AuthState
	RetryAfter time.Duration
}

// ConnectParams carries everything a network client needs to reach the
// remote endpoint on behalf of one credential.
type ConnectParams struct {
	Phone       string
	SessionPath string
	Fingerprint Fingerprint
	// Proxy is nil for a direct connection.
	Proxy *Proxy
}

// Network establishes authenticated connections to the remote endpoint.
// Implementations may return *RateLimitError or ErrUnregistered from either
// Connect or CheckAuthorized when the remote side reports those conditions.
type Network interface {
	// Connect opens a connection bound to the proxy, fingerprint and secret.
	Connect(ctx context.Context, params ConnectParams) (Conn, error)
}

// Conn is an open connection. Close must be called exactly once.
type Conn interface {
	// CheckAuthorized asks the remote endpoint whether the session is logged in.
	CheckAuthorized(ctx context.Context) (AuthStatus, error)

	// Close tears the connection down.
	Close() error
}

package network

import (
	"errors"
	"testing"
	"time"

	"github.com/gotd/td/tgerr"

	"tgcheck/internal/check"
	"tgcheck/internal/config"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantState check.AuthState
		wantRetry time.Duration
		wantErr   bool
	}{
		{name: "nil is authorized", err: nil, wantState: check.StateAuthorized},
		{name: "flood wait", err: tgerr.New(420, "FLOOD_WAIT_30"), wantState: check.StateRateLimited, wantRetry: 30 * time.Second},
		{name: "auth key unregistered", err: tgerr.New(401, "AUTH_KEY_UNREGISTERED"), wantState: check.StateUnregistered},
		{name: "session revoked", err: tgerr.New(401, "SESSION_REVOKED"), wantState: check.StateUnregistered},
		{name: "user deactivated", err: tgerr.New(401, "USER_DEACTIVATED_BAN"), wantState: check.StateUnregistered},
		{name: "other 401", err: tgerr.New(401, "AUTH_KEY_INVALID"), wantState: check.StateUnauthorized},
		{name: "unrelated error", err: errors.New("connection reset"), wantErr: true},
		{name: "server error", err: tgerr.New(500, "INTERNAL"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := statusFromError(tt.err)
			if (err != nil) != tt.wantErr {
				t.Fatalf("statusFromError() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if status.State != tt.wantState {
				t.Errorf("State = %d, want %d", status.State, tt.wantState)
			}
			if status.RetryAfter != tt.wantRetry {
				t.Errorf("RetryAfter = %s, want %s", status.RetryAfter, tt.wantRetry)
			}
		})
	}
}

func TestClassifyRemoteError(t *testing.T) {
	t.Run("flood wait becomes RateLimitError", func(t *testing.T) {
		err := classifyRemoteError(tgerr.New(420, "FLOOD_WAIT_12"))
		var rl *check.RateLimitError
		if !errors.As(err, &rl) {
			t.Fatalf("error = %v, want *RateLimitError", err)
		}
		if rl.RetryAfter != 12*time.Second {
			t.Errorf("RetryAfter = %s, want 12s", rl.RetryAfter)
		}
	})

	t.Run("unregistered wraps ErrUnregistered", func(t *testing.T) {
		err := classifyRemoteError(tgerr.New(401, "AUTH_KEY_UNREGISTERED"))
		if !errors.Is(err, check.ErrUnregistered) {
			t.Errorf("error = %v, want ErrUnregistered", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		orig := errors.New("dial tcp: i/o timeout")
		if err := classifyRemoteError(orig); err != orig {
			t.Errorf("error = %v, want original", err)
		}
	})
}

func TestNewNetworkFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.NetworkConfig
		wantErr bool
	}{
		{name: "mtproto", cfg: config.NetworkConfig{Type: "mtproto", ConnectTimeoutSeconds: 5}},
		{name: "empty type defaults to mtproto", cfg: config.NetworkConfig{}},
		{name: "unknown type", cfg: config.NetworkConfig{Type: "carrier-pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNetworkFromConfig(tt.cfg, check.NewNopLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewNetworkFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && n == nil {
				t.Error("network is nil")
			}
		})
	}
}

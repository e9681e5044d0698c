package testutil

import (
	"context"
	"sync"
	"time"

	"tgcheck/internal/check"
)

// Script describes how ScriptedNetwork answers for one phone.
type Script struct {
	// ConnectErr fails Connect.
	ConnectErr error
	// Status is returned by CheckAuthorized when CheckErr is nil.
	Status   check.AuthStatus
	CheckErr error
	// Delay is slept inside Connect, to hold a concurrency slot.
	Delay time.Duration
	// Panic makes Connect panic with this value when non-nil.
	Panic any
	// Block makes Connect wait until the channel is closed.
	Block <-chan struct{}
}

// ScriptedNetwork is a check.Network whose answers are scripted per phone.
// Phones without a script are authorized. It records every connection
// attempt and the peak number of simultaneous connections.
type ScriptedNetwork struct {
	mu       sync.Mutex
	scripts  map[string]Script
	attempts []check.ConnectParams
	inFlight int
	peak     int
	closed   int

	// Entered receives the phone each time Connect starts, when non-nil.
	Entered chan string
}

var _ check.Network = (*ScriptedNetwork)(nil)

// NewScriptedNetwork creates a network where every phone is authorized.
func NewScriptedNetwork() *ScriptedNetwork {
	return &ScriptedNetwork{scripts: make(map[string]Script)}
}

// Set scripts the answers for phone.
func (n *ScriptedNetwork) Set(phone string, s Script) *ScriptedNetwork {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scripts[phone] = s
	return n
}

// SetState scripts phone to report state with no delay.
func (n *ScriptedNetwork) SetState(phone string, state check.AuthState) *ScriptedNetwork {
	return n.Set(phone, Script{Status: check.AuthStatus{State: state}})
}

func (n *ScriptedNetwork) Connect(ctx context.Context, params check.ConnectParams) (check.Conn, error) {
	n.mu.Lock()
	s := n.scripts[params.Phone]
	n.attempts = append(n.attempts, params)
	n.inFlight++
	n.peak = max(n.peak, n.inFlight)
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.inFlight--
		n.mu.Unlock()
	}()

	if n.Entered != nil {
		n.Entered <- params.Phone
	}
	if s.Block != nil {
		select {
		case <-s.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	if s.Panic != nil {
		panic(s.Panic)
	}
	if s.ConnectErr != nil {
		return nil, s.ConnectErr
	}
	return &scriptedConn{net: n, script: s}, nil
}

// Attempts returns the parameters of every Connect call, in call order.
func (n *ScriptedNetwork) Attempts() []check.ConnectParams {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]check.ConnectParams(nil), n.attempts...)
}

// Peak returns the highest number of Connect calls in progress at once.
func (n *ScriptedNetwork) Peak() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.peak
}

// Closed returns how many connections were closed.
func (n *ScriptedNetwork) Closed() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

type scriptedConn struct {
	net    *ScriptedNetwork
	script Script
}

func (c *scriptedConn) CheckAuthorized(ctx context.Context) (check.AuthStatus, error) {
	if c.script.CheckErr != nil {
		return check.AuthStatus{}, c.script.CheckErr
	}
	return c.script.Status, nil
}

func (c *scriptedConn) Close() error {
	c.net.mu.Lock()
	defer c.net.mu.Unlock()
	c.net.closed++
	return nil
}

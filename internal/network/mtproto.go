package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tgerr"

	"tgcheck/internal/check"
)

// Remote error types that mean the authorization key is gone for good.
var unregisteredErrors = []string{
	"AUTH_KEY_UNREGISTERED",
	"SESSION_REVOKED",
	"USER_DEACTIVATED",
	"USER_DEACTIVATED_BAN",
}

// MTProtoNetwork connects to Telegram with an existing Telethon session file.
type MTProtoNetwork struct {
	timeout time.Duration
	logger  check.Logger
}

var _ check.Network = (*MTProtoNetwork)(nil)

// NewMTProtoNetwork creates a network client. timeout bounds both dialing and
// the initial handshake.
func NewMTProtoNetwork(timeout time.Duration, logger check.Logger) *MTProtoNetwork {
	return &MTProtoNetwork{timeout: timeout, logger: logger}
}

// Connect loads the session file, dials through the proxy and waits until the
// client has finished its handshake.
func (n *MTProtoNetwork) Connect(ctx context.Context, params check.ConnectParams) (check.Conn, error) {
	data, err := ReadSessionFile(ctx, params.SessionPath)
	if err != nil {
		return nil, err
	}

	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("loading session into memory: %w", err)
	}

	dial, err := NewDialer(params.Proxy, n.timeout)
	if err != nil {
		return nil, err
	}

	fp := params.Fingerprint
	client := telegram.NewClient(fp.AppID, fp.AppHash, telegram.Options{
		SessionStorage: storage,
		DC:             data.DC,
		Resolver:       dcs.Plain(dcs.PlainOptions{Dial: dcs.DialFunc(dial)}),
		Device: telegram.DeviceConfig{
			DeviceModel:    fp.Device,
			SystemVersion:  fp.SDK,
			AppVersion:     fp.AppVersion,
			SystemLangCode: fp.SystemLangCode,
			LangPack:       fp.LangPack,
			LangCode:       fp.LangCode,
		},
		NoUpdates:   true,
		DialTimeout: n.timeout,
	})

	runCtx, cancel := context.WithCancel(ctx)
	conn := &mtprotoConn{
		client: client,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	ready := make(chan struct{})

	go func() {
		conn.done <- client.Run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	timer := time.NewTimer(n.timeout)
	defer timer.Stop()

	select {
	case <-ready:
		n.logger.Debug("connected", "phone", params.Phone, "dc", data.DC)
		return conn, nil
	case err := <-conn.done:
		cancel()
		if err == nil {
			err = errors.New("client stopped before handshake")
		}
		return nil, classifyRemoteError(err)
	case <-timer.C:
		cancel()
		<-conn.done
		return nil, fmt.Errorf("handshake did not finish within %s", n.timeout)
	case <-ctx.Done():
		cancel()
		<-conn.done
		return nil, ctx.Err()
	}
}

type mtprotoConn struct {
	client *telegram.Client
	cancel context.CancelFunc
	done   chan error

	closeOnce sync.Once
	closeErr  error
}

// CheckAuthorized requests the update state, which only succeeds for a
// logged-in session.
func (c *mtprotoConn) CheckAuthorized(ctx context.Context) (check.AuthStatus, error) {
	_, err := c.client.API().UpdatesGetState(ctx)
	return statusFromError(err)
}

func (c *mtprotoConn) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if err := <-c.done; err != nil && !errors.Is(err, context.Canceled) {
			c.closeErr = fmt.Errorf("stopping client: %w", err)
		}
	})
	return c.closeErr
}

// statusFromError maps the result of an authorized request to an AuthStatus.
// Errors that say nothing about authorization are returned as-is.
func statusFromError(err error) (check.AuthStatus, error) {
	if err == nil {
		return check.AuthStatus{State: check.StateAuthorized}, nil
	}
	if d, ok := tgerr.AsFloodWait(err); ok {
		return check.AuthStatus{State: check.StateRateLimited, RetryAfter: d}, nil
	}
	if tgerr.Is(err, unregisteredErrors...) {
		return check.AuthStatus{State: check.StateUnregistered}, nil
	}
	if tgerr.IsCode(err, 401) {
		return check.AuthStatus{State: check.StateUnauthorized}, nil
	}
	return check.AuthStatus{}, err
}

// classifyRemoteError converts remote errors seen while connecting into the
// error values the validator understands.
func classifyRemoteError(err error) error {
	if d, ok := tgerr.AsFloodWait(err); ok {
		return &check.RateLimitError{RetryAfter: d}
	}
	if tgerr.Is(err, unregisteredErrors...) {
		return fmt.Errorf("%w: %v", check.ErrUnregistered, err)
	}
	return err
}

package network

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/proxy"

	"tgcheck/internal/check"
)

// DialFunc dials a TCP address, optionally through a proxy.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewDialer returns a DialFunc that connects through p, or directly when p is
// nil. Only SOCKS5 proxies are supported.
func NewDialer(p *check.Proxy, timeout time.Duration) (DialFunc, error) {
	direct := &net.Dialer{Timeout: timeout}
	if p == nil {
		return direct.DialContext, nil
	}

	if p.Protocol != "" && p.Protocol != check.ProtocolSOCKS5 {
		return nil, fmt.Errorf("unsupported proxy protocol: %s", p.Protocol)
	}

	var auth *proxy.Auth
	if p.Username != "" || p.Password != "" {
		auth = &proxy.Auth{User: p.Username, Password: p.Password}
	}

	d, err := proxy.SOCKS5("tcp", p.Addr(), auth, direct)
	if err != nil {
		return nil, fmt.Errorf("creating socks5 dialer for %s: %w", p.Addr(), err)
	}

	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer for %s does not support contexts", p.Addr())
	}
	return cd.DialContext, nil
}

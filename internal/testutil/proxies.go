package testutil

import (
	"net"
	"strconv"
	"sync"

	"tgcheck/internal/check"
)

// StaticProxyLoader returns a fixed proxy list.
type StaticProxyLoader struct {
	Proxies []check.Proxy
	Err     error
}

var _ check.ProxyLoader = (*StaticProxyLoader)(nil)

// NewStaticProxyLoader creates a loader for SOCKS5 proxies at the given
// host:port addresses.
func NewStaticProxyLoader(addrs ...string) *StaticProxyLoader {
	l := &StaticProxyLoader{}
	for _, a := range addrs {
		host, port := splitAddr(a)
		l.Proxies = append(l.Proxies, check.Proxy{Protocol: check.ProtocolSOCKS5, Host: host, Port: port})
	}
	return l
}

func (l *StaticProxyLoader) LoadProxies() ([]check.Proxy, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	if len(l.Proxies) == 0 {
		return nil, check.ErrNoProxies
	}
	return l.Proxies, nil
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 1080
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 1080
	}
	return host, port
}

// RecordingHistory is an in-memory check.RunHistory.
type RecordingHistory struct {
	mu   sync.Mutex
	runs []*check.RunReport
	Err  error
}

var _ check.RunHistory = (*RecordingHistory)(nil)

func (h *RecordingHistory) RecordRun(report *check.RunReport) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	h.runs = append(h.runs, report)
	return nil
}

func (h *RecordingHistory) RecentRuns(limit int) ([]*check.RunReport, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*check.RunReport
	for i := len(h.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.runs[i])
	}
	return out, nil
}

package check

import (
	"math/rand/v2"
	"net"
	"strconv"
)

// ProtocolSOCKS5 is the only proxy protocol supported.
const ProtocolSOCKS5 = "socks5"

// Proxy is an authenticated SOCKS5 endpoint. Values are immutable once loaded.
type Proxy struct {
	Protocol string
	Host     string
	Port     int
	Username string
	Password string
}

// Addr returns host:port.
func (p Proxy) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

func (p Proxy) String() string {
	return p.Protocol + "://" + p.Addr()
}

// ProxyPool is a read-only set of proxies shared by concurrent tasks.
type ProxyPool struct {
	proxies []Proxy
}

// NewProxyPool copies proxies into a new pool.
func NewProxyPool(proxies []Proxy) *ProxyPool {
	return &ProxyPool{proxies: append([]Proxy(nil), proxies...)}
}

// Len returns the number of proxies in the pool.
func (p *ProxyPool) Len() int {
	return len(p.proxies)
}

// Pick returns a uniformly random proxy. Draws are independent and safe for
// concurrent use. ok is false only if the pool is empty.
func (p *ProxyPool) Pick() (proxy Proxy, ok bool) {
	if len(p.proxies) == 0 {
		return Proxy{}, false
	}
	return p.proxies[rand.IntN(len(p.proxies))], true
}

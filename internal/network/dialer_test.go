package network

import (
	"context"
	"net"
	"testing"
	"time"

	"tgcheck/internal/check"
)

func TestNewDialer_Direct(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err == nil {
			c.Close()
		}
	}()

	dial, err := NewDialer(nil, time.Second)
	if err != nil {
		t.Fatalf("NewDialer() error = %v", err)
	}

	conn, err := dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	conn.Close()
}

func TestNewDialer_Proxy(t *testing.T) {
	tests := []struct {
		name    string
		proxy   check.Proxy
		wantErr bool
	}{
		{name: "socks5 with auth", proxy: check.Proxy{Protocol: check.ProtocolSOCKS5, Host: "127.0.0.1", Port: 1080, Username: "u", Password: "p"}},
		{name: "socks5 without auth", proxy: check.Proxy{Protocol: check.ProtocolSOCKS5, Host: "127.0.0.1", Port: 1080}},
		{name: "http is unsupported", proxy: check.Proxy{Protocol: "http", Host: "127.0.0.1", Port: 8080}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dial, err := NewDialer(&tt.proxy, time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDialer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && dial == nil {
				t.Error("dial func is nil")
			}
		})
	}
}

func TestNewDialer_ProxyUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	p := &check.Proxy{Protocol: check.ProtocolSOCKS5, Host: "127.0.0.1", Port: addr.Port}
	dial, err := NewDialer(p, time.Second)
	if err != nil {
		t.Fatalf("NewDialer() error = %v", err)
	}

	if _, err := dial(context.Background(), "tcp", "149.154.167.51:443"); err == nil {
		t.Error("dial through a closed proxy port succeeded")
	}
}

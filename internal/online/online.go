// Package online probes for a working internet connection.
package online

import (
	"context"
	"net"
	"time"
)

// DefaultAddrs are captive-portal hosts that answer plain TCP on port 80.
var DefaultAddrs = []string{"clients3.google.com:80", "detectportal.firefox.com:80"}

// DefaultTimeout bounds each connection attempt.
const DefaultTimeout = 5 * time.Second

// Dialer opens network connections.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Checker tries each address in order; the first successful connection
// means the machine is online.
type Checker struct {
	Addrs   []string
	Timeout time.Duration
	Dialer  Dialer
}

// Online reports whether any address accepts a TCP connection.
func (c *Checker) Online(ctx context.Context) bool {
	addrs := c.Addrs
	if len(addrs) == 0 {
		addrs = DefaultAddrs
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var dialer Dialer = c.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	for _, addr := range addrs {
		if ok := try(ctx, dialer, addr, timeout); ok {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

func try(ctx context.Context, dialer Dialer, addr string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

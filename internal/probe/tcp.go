package probe

import (
	"context"
	"net"
	"time"
)

const defaultDialTimeout = 3 * time.Second

// TCP probes by completing a plain TCP handshake against the endpoint.
// It covers databases without a wired driver; a listening socket is taken
// as readiness.
type TCP struct {
	Addr    string
	Timeout time.Duration
}

func (p TCP) Check(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p TCP) Describe() string { return "tcp://" + p.Addr }

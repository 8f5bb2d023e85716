package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Prober is a strategy that checks whether the database dependency is ready
// to accept connections. A probe must be independent of schema state: it only
// verifies that the server answers, not that any table exists.
type Prober interface {
	// Check returns nil when the database accepted the probe.
	Check(ctx context.Context) error
	// Describe returns a human-readable description of the probe target.
	Describe() string
}

// Settings carries the connection parameters shared by all probe drivers.
type Settings struct {
	Driver   string // postgres (default), clickhouse, tcp
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // postgres only; default "disable"
}

// Addr returns host:port.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// New builds a Prober for the configured driver.
func New(s Settings) (Prober, error) {
	switch s.Driver {
	case "", "postgres", "postgresql":
		return NewPostgres(s), nil
	case "clickhouse":
		return NewClickHouse(s), nil
	case "tcp":
		return TCP{Addr: s.Addr()}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q, must be one of: postgres, clickhouse, tcp", s.Driver)
	}
}

package probe

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouse probes using the official ClickHouse Go client's Ping.
type ClickHouse struct {
	opts *clickhouse.Options
	addr string
}

func NewClickHouse(s Settings) ClickHouse {
	database := s.Database
	if database == "" {
		database = "default"
	}
	user := s.User
	if user == "" {
		user = "default"
	}
	return ClickHouse{
		opts: &clickhouse.Options{
			Addr: []string{s.Addr()},
			Auth: clickhouse.Auth{
				Database: database,
				Username: user,
				Password: s.Password,
			},
		},
		addr: s.Addr(),
	}
}

func (p ClickHouse) Check(ctx context.Context) error {
	conn, err := clickhouse.Open(p.opts)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return conn.Ping(ctx)
}

func (p ClickHouse) Describe() string { return "clickhouse://" + p.addr }

package probe

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres probes by opening a connection with the pgx stdlib driver and
// pinging it. The connection is closed after every check so the gate never
// holds a slot in the server's connection budget while waiting.
type Postgres struct {
	dsn  string
	addr string
}

func NewPostgres(s Settings) Postgres {
	sslmode := s.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     s.Addr(),
		Path:     "/" + s.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	if s.User != "" {
		if s.Password != "" {
			u.User = url.UserPassword(s.User, s.Password)
		} else {
			u.User = url.User(s.User)
		}
	}
	return Postgres{dsn: u.String(), addr: s.Addr()}
}

func (p Postgres) Check(ctx context.Context) error {
	db, err := sql.Open("pgx", p.dsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

func (p Postgres) Describe() string { return "postgres://" + p.addr }

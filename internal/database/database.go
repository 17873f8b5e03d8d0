// Package database centralises sqlx connection helpers.  The driver is
// picked from the DATABASE_URL scheme:
//
//	postgres://, postgresql://  → jackc/pgx (stdlib adapter)
//	mysql://                    → go-sql-driver/mysql
//
// Open never dials.  The bootstrap must not block on the database, so
// connectivity is checked later by the readiness probe through Ping.
// Callers should Close() the returned *Pool when no longer needed.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultOptions: 15 max open, 5 idle, and a 30-minute connection lifetime.
var DefaultOptions = Options{
	MaxOpenConns:    15,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
}

// Pool is a *sqlx.DB that satisfies the readiness Checker interface.
type Pool struct {
	*sqlx.DB
}

// Ping verifies a connection can be established.
func (p *Pool) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Open returns a lazily-connecting pool for rawURL.
func Open(rawURL string, o Options) (*Pool, error) {
	driver, dsn, err := DriverDSN(rawURL)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", driver, err)
	}
	return Wrap(db, o), nil
}

// Wrap applies o to an existing handle.  Tests use it with sqlmock.
func Wrap(db *sqlx.DB, o Options) *Pool {
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)
	return &Pool{DB: db}
}

// DriverDSN maps a database URL to a registered driver name and the DSN
// that driver expects.
func DriverDSN(rawURL string) (driver, dsn string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("database: parse url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return "pgx", rawURL, nil
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		cfg.ParseTime = true
		if q := u.Query(); len(q) > 0 {
			cfg.Params = make(map[string]string, len(q))
			for k := range q {
				cfg.Params[k] = q.Get(k)
			}
		}
		return "mysql", cfg.FormatDSN(), nil
	default:
		return "", "", fmt.Errorf("database: unsupported scheme %q", u.Scheme)
	}
}

package commercedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var ErrNotFound = errors.New("record not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver       string        `envconfig:"DRIVER" split_words:"true" default:"sqlite"`
	DSN          string        `envconfig:"DSN" split_words:"true" default:"file:storeops.db?cache=shared&_pragma=busy_timeout(5000)"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"4"`
	ConnLifetime time.Duration `envconfig:"CONN_LIFETIME" split_words:"true" default:"30m"`
}

// DB is the data access facade over the relational store. Reads return typed
// rows with stable field names; writes block until committed. Concurrent
// reads are safe; overlapping writes to the same row are not serialized here.
type DB struct {
	bun *bun.DB
}

func Open(cfg Config) (*DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	var bdb *bun.DB
	switch driver {
	case "", DriverSQLite:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		bdb = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		bdb = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		bdb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnLifetime > 0 {
		bdb.SetConnMaxLifetime(cfg.ConnLifetime)
	}

	return &DB{bun: bdb}, nil
}

func (d *DB) Close() error {
	return d.bun.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.bun.PingContext(ctx)
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pgprobe/pgprobe/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

// DriverPGX is the default: like libpq it uses sslmode=prefer, where lib/pq
// requires SSL unless told otherwise.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

var (
	ErrMissingSetting = errors.New("missing database setting")
	ErrInvalidPort    = errors.New("invalid database port")
	ErrUnknownDriver  = errors.New("unknown database driver")
)

// EngineError is returned by Build when no engine could be constructed.
type EngineError struct {
	URL string // redacted
	Err error
}

func (e *EngineError) Error() string { return "create engine: " + e.Err.Error() }

func (e *EngineError) Unwrap() error { return e.Err }

// Engine is a reusable connection factory for one database. It does not hold
// an open connection until Conn is called.
type Engine struct {
	db       *sql.DB
	driver   string
	url      string
	database string
}

// Build constructs a new Engine from cfg. It validates the connection URL and
// prepares the driver but never dials the server. Each call returns an
// independent Engine.
func Build(cfg config.Config) (*Engine, error) {
	fail := func(err error) (*Engine, error) {
		return nil, &EngineError{URL: cfg.Redacted(), Err: err}
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		return fail(fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", ")))
	}

	port, err := strconv.Atoi(cfg.DBPort)
	if err != nil || port < 1 || port > 65535 {
		return fail(fmt.Errorf("%w: %q", ErrInvalidPort, cfg.DBPort))
	}

	url := cfg.URL()
	dsn := url
	if cfg.SSLMode != "" {
		dsn += "?sslmode=" + cfg.SSLMode
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverPGX
	}

	var sqlDB *sql.DB
	switch driver {
	case DriverPQ:
		connector, err := pq.NewConnector(dsn)
		if err != nil {
			return fail(err)
		}
		sqlDB = sql.OpenDB(connector)
	case DriverPGX:
		connCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return fail(err)
		}
		sqlDB = stdlib.OpenDB(*connCfg)
	default:
		return fail(fmt.Errorf("%w: %q", ErrUnknownDriver, driver))
	}

	return &Engine{db: sqlDB, driver: driver, url: url, database: cfg.DBName}, nil
}

// Conn acquires a single connection. The caller must Close it.
func (e *Engine) Conn(ctx context.Context) (*sql.Conn, error) {
	return e.db.Conn(ctx)
}

func (e *Engine) Driver() string   { return e.driver }
func (e *Engine) URL() string      { return e.url }
func (e *Engine) Database() string { return e.database }

func (e *Engine) Stats() sql.DBStats { return e.db.Stats() }

func (e *Engine) Close() error { return e.db.Close() }

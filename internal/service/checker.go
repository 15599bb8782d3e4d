package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"pgprobe/pgprobe/internal/config"
	"pgprobe/pgprobe/internal/db"
	"pgprobe/pgprobe/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type Checker interface {
	Check(ctx context.Context) model.Report
}

type checker struct {
	cfg      config.Config
	progress io.Writer
	build    func(config.Config) (*db.Engine, error)
	connect  func(context.Context, *db.Engine) error
	now      func() time.Time
}

type Option func(*checker)

// WithProgress writes each stage's status line to w as soon as the stage
// finishes, so a slow connect still shows the engine line first.
func WithProgress(w io.Writer) Option {
	return func(c *checker) { c.progress = w }
}

func NewChecker(cfg config.Config, opts ...Option) Checker {
	c := &checker{cfg: cfg, progress: io.Discard, build: db.Build, connect: connect, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check builds an engine, opens one connection and releases it. Failures are
// reported, never returned or panicked.
func (c *checker) Check(ctx context.Context) model.Report {
	start := c.now()
	rep := model.Report{
		ID:        uuid.New().String(),
		Database:  c.cfg.DBName,
		URL:       c.cfg.Redacted(),
		Driver:    c.cfg.Driver,
		CheckedAt: start,
	}

	engine, err := c.build(c.cfg)
	if err != nil {
		rep.Stage = model.StageEngine
		rep.EngineErr = err
		rep.Error = err.Error()
		rep.Elapsed = c.now().Sub(start)
		printEngine(c.progress, rep)
		return rep
	}
	defer engine.Close()
	rep.Driver = engine.Driver()
	printEngine(c.progress, rep)

	if err := c.connect(ctx, engine); err != nil {
		rep.Stage = model.StageConnect
		rep.ConnErr = err
		rep.Error = err.Error()
		rep.SQLState = sqlState(err)
		rep.Elapsed = c.now().Sub(start)
		printConn(c.progress, rep)
		return rep
	}

	rep.Stage = model.StageOK
	rep.Elapsed = c.now().Sub(start)
	printConn(c.progress, rep)
	return rep
}

func connect(ctx context.Context, engine *db.Engine) error {
	conn, err := engine.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return nil
}

// sqlState extracts the server error code from either driver's error type.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// Print writes the human-readable status lines for rep.
func Print(w io.Writer, rep model.Report) {
	printEngine(w, rep)
	if rep.EngineErr == nil {
		printConn(w, rep)
	}
}

func printEngine(w io.Writer, rep model.Report) {
	if rep.EngineErr != nil {
		fmt.Fprintf(w, "Error creating database engine: %v\n", rep.EngineErr)
		return
	}
	fmt.Fprintf(w, "Successfully created engine for database: %s\n", rep.Database)
}

func printConn(w io.Writer, rep model.Report) {
	if rep.ConnErr != nil {
		fmt.Fprintf(w, "Connection failed: %v\n", rep.ConnErr)
		return
	}
	fmt.Fprintln(w, "Connection successful!")
}

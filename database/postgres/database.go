// Package postgres implements the dbkeep session for PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/jmoiron/sqlx"

	"github.com/sagarc03/dbkeep"
)

// Conn is a PostgreSQL session backed by a connection pool.
type Conn struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	verbose bool
}

var _ dbkeep.Conn = (*Conn)(nil)

// Open establishes a connection pool to the server named by desc and
// verifies it with a ping. The pool is closed if the ping fails.
func Open(ctx context.Context, desc dbkeep.Descriptor, logger *slog.Logger) (*Conn, error) {
	if desc.Kind != dbkeep.KindPostgres {
		return nil, fmt.Errorf("open postgres: %w: %s", dbkeep.ErrUnsupportedBackend, desc.Kind)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := pgxpool.ParseConfig(desc.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	if desc.VerboseErrors {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   traceLogger(logger),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Conn{
		pool:    pool,
		logger:  logger,
		verbose: desc.VerboseErrors,
	}, nil
}

func (c *Conn) Kind() dbkeep.Kind {
	return dbkeep.KindPostgres
}

// Ping verifies the database connection is alive.
func (c *Conn) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	query = rebind(query)
	tag, err := c.pool.Exec(ctx, query, args...)
	if err != nil {
		c.logFailure(ctx, query, err)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) dbkeep.Row {
	query = rebind(query)
	return &row{
		row:   c.pool.QueryRow(ctx, query, args...),
		conn:  c,
		ctx:   ctx,
		query: query,
	}
}

func (c *Conn) Query(ctx context.Context, query string, args ...any) (dbkeep.Rows, error) {
	query = rebind(query)
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		c.logFailure(ctx, query, err)
		return nil, err
	}
	return rows, nil
}

func (c *Conn) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Close closes the connection pool.
func (c *Conn) Close() error {
	c.pool.Close()
	return nil
}

func (c *Conn) logFailure(ctx context.Context, query string, err error) {
	if !c.verbose {
		return
	}
	c.logger.DebugContext(ctx, "postgres statement failed", "query", query, "err", err)
}

// rebind converts "?" placeholders to PostgreSQL's "$n" form.
func rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

type row struct {
	row   pgx.Row
	conn  *Conn
	ctx   context.Context //nolint:containedctx // only used to log a deferred Scan failure
	query string
}

func (r *row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return dbkeep.ErrNoRows
	}
	if err != nil {
		r.conn.logFailure(r.ctx, r.query, err)
	}
	return err
}

func traceLogger(logger *slog.Logger) tracelog.Logger {
	return tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		attrs := make([]any, 0, len(data)*2)
		for k, v := range data {
			attrs = append(attrs, k, v)
		}
		logger.Log(ctx, slogLevel(level), msg, attrs...)
	})
}

func slogLevel(level tracelog.LogLevel) slog.Level {
	switch level {
	case tracelog.LogLevelError:
		return slog.LevelError
	case tracelog.LogLevelWarn:
		return slog.LevelWarn
	case tracelog.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

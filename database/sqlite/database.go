// Package sqlite implements the dbkeep session for the embedded SQLite engine.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sagarc03/dbkeep"

	_ "modernc.org/sqlite" // SQLite driver
)

const memoryPath = ":memory:"

// Conn is a SQLite session.
type Conn struct {
	db      *sqlx.DB
	logger  *slog.Logger
	verbose bool
}

var _ dbkeep.Conn = (*Conn)(nil)

// Open opens the database file named by desc, creating its directory when
// needed, and verifies it with a ping. The handle is closed if the ping fails.
func Open(ctx context.Context, desc dbkeep.Descriptor, logger *slog.Logger) (*Conn, error) {
	if desc.Kind != dbkeep.KindSQLite {
		return nil, fmt.Errorf("open sqlite: %w: %s", dbkeep.ErrUnsupportedBackend, desc.Kind)
	}
	if desc.Path == "" {
		return nil, fmt.Errorf("open sqlite: %w: path", dbkeep.ErrMissingConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	if desc.Path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(desc.Path), 0o755); err != nil {
			return nil, fmt.Errorf("open sqlite: create directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dataSource(desc.Path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if desc.Path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Conn{
		db:      db,
		logger:  logger,
		verbose: desc.VerboseErrors,
	}, nil
}

// dataSource adds the busy-timeout pragma to path, keeping any query
// parameters the path already carries.
func dataSource(path string) string {
	if path == memoryPath {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

func (c *Conn) Kind() dbkeep.Kind {
	return dbkeep.KindSQLite
}

// Ping verifies the database connection is alive.
func (c *Conn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		c.logFailure(ctx, query, err)
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) dbkeep.Row {
	return &row{
		row:   c.db.QueryRowxContext(ctx, query, args...),
		conn:  c,
		ctx:   ctx,
		query: query,
	}
}

func (c *Conn) Query(ctx context.Context, query string, args ...any) (dbkeep.Rows, error) {
	rows, err := c.db.QueryxContext(ctx, query, args...)
	if err != nil {
		c.logFailure(ctx, query, err)
		return nil, err
	}
	return &resultRows{rows: rows}, nil
}

// QuoteIdentifier safely quotes a SQLite identifier.
func (c *Conn) QuoteIdentifier(name string) string {
	return quoteIdentifier(name)
}

// Close closes the database handle.
func (c *Conn) Close() error {
	return c.db.Close()
}

func (c *Conn) logFailure(ctx context.Context, query string, err error) {
	if !c.verbose {
		return
	}
	c.logger.DebugContext(ctx, "sqlite statement failed", "query", query, "err", err)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type row struct {
	row   *sqlx.Row
	conn  *Conn
	ctx   context.Context //nolint:containedctx // only used to log a deferred Scan failure
	query string
}

func (r *row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return dbkeep.ErrNoRows
	}
	if err != nil {
		r.conn.logFailure(r.ctx, r.query, err)
	}
	return err
}

type resultRows struct {
	rows *sqlx.Rows
}

func (r *resultRows) Next() bool             { return r.rows.Next() }
func (r *resultRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *resultRows) Err() error             { return r.rows.Err() }
func (r *resultRows) Close()                 { _ = r.rows.Close() }

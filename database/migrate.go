package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sagarc03/dbkeep"
)

// Migration is a single schema change. Up and Down receive the session
// directly; the Migrator never wraps them in a transaction.
type Migration struct {
	Name string
	Up   func(ctx context.Context, conn dbkeep.Conn) error
	Down func(ctx context.Context, conn dbkeep.Conn) error
}

// MigrationStatus describes one known migration.
type MigrationStatus struct {
	Name      string
	Applied   bool
	Batch     int
	AppliedAt time.Time
}

// Migrator applies an ordered migration set and records each applied
// migration in dbkeep.MigrationsTable.
//
// Callers must not run two Migrators against the same schema at once; the
// lock row in dbkeep.MigrationsLockTable turns that into ErrMigrationLocked.
type Migrator struct {
	migrations []Migration
	byName     map[string]Migration
	logger     *slog.Logger
	metrics    *Metrics
}

// NewMigrator validates the migration set and sorts it by name.
func NewMigrator(migrations []Migration, opts ...Option) (*Migrator, error) {
	o := newOptions(opts)

	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int {
		return strings.Compare(a.Name, b.Name)
	})

	byName := make(map[string]Migration, len(sorted))
	for _, m := range sorted {
		if m.Name == "" {
			return nil, errors.New("new migrator: migration name cannot be empty")
		}
		if m.Up == nil {
			return nil, fmt.Errorf("new migrator: migration %s has no up function", m.Name)
		}
		if _, ok := byName[m.Name]; ok {
			return nil, fmt.Errorf("new migrator: duplicate migration %s", m.Name)
		}
		byName[m.Name] = m
	}

	return &Migrator{
		migrations: sorted,
		byName:     byName,
		logger:     o.logger,
		metrics:    o.metrics,
	}, nil
}

// Latest applies every pending migration in order and returns their names.
// The first failure stops the run; migrations applied before it stay applied.
func (m *Migrator) Latest(ctx context.Context, conn dbkeep.Conn) ([]string, error) {
	return m.apply(ctx, conn, len(m.migrations))
}

// Up applies the next pending migration. It returns an empty name when
// nothing is pending.
func (m *Migrator) Up(ctx context.Context, conn dbkeep.Conn) (string, error) {
	applied, err := m.apply(ctx, conn, 1)
	if len(applied) == 0 {
		return "", err
	}
	return applied[0], err
}

// Down reverts the most recently applied migration and deletes its record.
// It returns an empty name when nothing has been applied.
func (m *Migrator) Down(ctx context.Context, conn dbkeep.Conn) (name string, err error) {
	if err := createMigrationTables(ctx, conn); err != nil {
		return "", fmt.Errorf("migrate down: %w", err)
	}

	if err := m.lock(ctx, conn); err != nil {
		return "", fmt.Errorf("migrate down: %w", err)
	}
	defer func() {
		if unlockErr := m.unlock(context.WithoutCancel(ctx), conn); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("migrate down: %w", unlockErr))
		}
	}()

	table := conn.QuoteIdentifier(dbkeep.MigrationsTable)

	var rec dbkeep.MigrationRecord
	err = conn.QueryRow(ctx, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY id DESC LIMIT 1`, table)).Scan(&rec.ID, &rec.Name)
	if errors.Is(err, dbkeep.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("migrate down: last applied: %w", err)
	}

	migration, ok := m.byName[rec.Name]
	if !ok {
		return "", fmt.Errorf("%w: %s: unknown migration", dbkeep.ErrMigrationFailed, rec.Name)
	}
	if migration.Down == nil {
		return "", fmt.Errorf("%w: %s: no down function", dbkeep.ErrMigrationFailed, rec.Name)
	}

	m.logger.InfoContext(ctx, "reverting migration", "name", rec.Name)
	if err := migration.Down(ctx, conn); err != nil {
		return "", fmt.Errorf("%w: %s: %w", dbkeep.ErrMigrationFailed, rec.Name, err)
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), rec.ID); err != nil {
		return "", fmt.Errorf("%w: %s: delete record: %w", dbkeep.ErrMigrationFailed, rec.Name, err)
	}

	m.logger.InfoContext(ctx, "migration reverted", "name", rec.Name)
	return rec.Name, nil
}

// List reports every known migration in order. It does not create the
// bookkeeping tables.
func (m *Migrator) List(ctx context.Context, conn dbkeep.Conn) ([]MigrationStatus, error) {
	records, err := appliedRecords(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byName := make(map[string]dbkeep.MigrationRecord, len(records))
	for _, r := range records {
		byName[r.Name] = r
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, migration := range m.migrations {
		status := MigrationStatus{Name: migration.Name}
		if r, ok := byName[migration.Name]; ok {
			status.Applied = true
			status.Batch = r.Batch
			status.AppliedAt = r.MigrationTime
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// NeedsMigration reports whether any known migration is pending.
func (m *Migrator) NeedsMigration(ctx context.Context, conn dbkeep.Conn) (bool, error) {
	statuses, err := m.List(ctx, conn)
	if err != nil {
		return false, err
	}
	for _, s := range statuses {
		if !s.Applied {
			return true, nil
		}
	}
	return false, nil
}

// ForceUnlock clears the migration run lock left behind by a crashed migrator.
func (m *Migrator) ForceUnlock(ctx context.Context, conn dbkeep.Conn) error {
	if err := createMigrationTables(ctx, conn); err != nil {
		return fmt.Errorf("force unlock: %w", err)
	}
	if err := m.unlock(ctx, conn); err != nil {
		return fmt.Errorf("force unlock: %w", err)
	}
	m.logger.WarnContext(ctx, "migration lock released")
	return nil
}

func (m *Migrator) apply(ctx context.Context, conn dbkeep.Conn, limit int) (applied []string, err error) {
	if err := createMigrationTables(ctx, conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := m.lock(ctx, conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	defer func() {
		if unlockErr := m.unlock(context.WithoutCancel(ctx), conn); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("migrate: %w", unlockErr))
		}
	}()

	records, err := appliedRecords(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	done := make(map[string]bool, len(records))
	batch := 0
	for _, r := range records {
		done[r.Name] = true
		batch = max(batch, r.Batch)
	}
	batch++

	insert := fmt.Sprintf( //nolint:gosec // G201: table name is a constant
		`INSERT INTO %s (name, batch, migration_time) VALUES (?, ?, ?)`,
		conn.QuoteIdentifier(dbkeep.MigrationsTable),
	)

	for _, migration := range m.migrations {
		if len(applied) >= limit {
			break
		}
		if done[migration.Name] {
			m.logger.DebugContext(ctx, "migration already applied", "name", migration.Name)
			continue
		}

		if err := migration.Up(ctx, conn); err != nil {
			return applied, fmt.Errorf("%w: %s: %w", dbkeep.ErrMigrationFailed, migration.Name, err)
		}

		if _, err := conn.Exec(ctx, insert, migration.Name, batch, time.Now().UnixMilli()); err != nil {
			return applied, fmt.Errorf("%w: %s: record migration: %w", dbkeep.ErrMigrationFailed, migration.Name, err)
		}

		m.metrics.migrationApplied()
		m.logger.InfoContext(ctx, "migration applied", "name", migration.Name, "batch", batch)
		applied = append(applied, migration.Name)
	}

	return applied, nil
}

func (m *Migrator) lock(ctx context.Context, conn dbkeep.Conn) error {
	query := fmt.Sprintf( //nolint:gosec // G201: identifiers are constants
		`UPDATE %s SET is_locked = 1 WHERE %s = 1 AND is_locked = 0`,
		conn.QuoteIdentifier(dbkeep.MigrationsLockTable),
		conn.QuoteIdentifier("index"),
	)

	n, err := conn.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if n == 0 {
		return dbkeep.ErrMigrationLocked
	}
	return nil
}

func (m *Migrator) unlock(ctx context.Context, conn dbkeep.Conn) error {
	query := fmt.Sprintf( //nolint:gosec // G201: identifiers are constants
		`UPDATE %s SET is_locked = 0 WHERE %s = 1`,
		conn.QuoteIdentifier(dbkeep.MigrationsLockTable),
		conn.QuoteIdentifier("index"),
	)

	if _, err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// appliedRecords returns the bookkeeping rows ordered by id. A missing
// table means nothing has been applied.
func appliedRecords(ctx context.Context, conn dbkeep.Conn) ([]dbkeep.MigrationRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is a constant
		`SELECT id, name, batch, migration_time FROM %s ORDER BY id ASC`,
		conn.QuoteIdentifier(dbkeep.MigrationsTable),
	)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		if dbkeep.IsTableNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("applied migrations: %w", err)
	}
	defer rows.Close()

	var records []dbkeep.MigrationRecord
	for rows.Next() {
		var r dbkeep.MigrationRecord
		var millis int64
		if err := rows.Scan(&r.ID, &r.Name, &r.Batch, &millis); err != nil {
			return nil, fmt.Errorf("applied migrations: scan: %w", err)
		}
		r.MigrationTime = time.UnixMilli(millis).UTC()
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		if dbkeep.IsTableNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("applied migrations: rows error: %w", err)
	}

	return records, nil
}

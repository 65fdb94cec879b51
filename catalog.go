package dbkeep

import (
	"fmt"
	"slices"
)

const (
	// MigrationsTable records applied migrations.
	MigrationsTable = "schema_migrations"
	// MigrationsLockTable holds the migration run lock.
	MigrationsLockTable = "schema_migrations_lock"
)

// Catalog is the ordered set of every table known to the schema,
// followed by the two migration bookkeeping tables.
type Catalog struct {
	tables []string
}

// NewCatalog builds a Catalog from schema table names. Duplicates are
// dropped, keeping the first occurrence, and the bookkeeping tables are
// appended unless already listed.
func NewCatalog(tables ...string) (Catalog, error) {
	seen := make(map[string]struct{}, len(tables)+2)
	out := make([]string, 0, len(tables)+2)

	for _, name := range append(slices.Clone(tables), MigrationsTable, MigrationsLockTable) {
		if !IsValidTableName(name) {
			return Catalog{}, fmt.Errorf("new catalog: %w: %q", ErrInvalidTableName, name)
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	return Catalog{tables: out}, nil
}

// Tables returns a copy of the catalog's table names.
func (c Catalog) Tables() []string {
	return slices.Clone(c.tables)
}

func (c Catalog) Len() int {
	return len(c.tables)
}

func (c Catalog) Contains(name string) bool {
	return slices.Contains(c.tables, name)
}

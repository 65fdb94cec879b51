// Package schema holds the static table definitions the lifecycle commands
// work against. A Schema is built once at startup and never changed.
package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sagarc03/dbkeep"
)

// Semantic column types. Backends map these to concrete SQL types.
const (
	TypeID        = "id"
	TypeString    = "string"
	TypeText      = "text"
	TypeInteger   = "integer"
	TypeBoolean   = "boolean"
	TypeTimestamp = "timestamp"
	TypeJSON      = "json"
)

var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrUnknownType   = errors.New("unknown column type")
)

var knownTypes = map[string]bool{
	TypeID:        true,
	TypeString:    true,
	TypeText:      true,
	TypeInteger:   true,
	TypeBoolean:   true,
	TypeTimestamp: true,
	TypeJSON:      true,
}

// Column is a single column and its semantic type.
type Column struct {
	Name string
	Type string
}

// Table is a named, ordered list of columns.
type Table struct {
	Name    string
	Columns []Column
}

// Schema maps table names to column definitions, keeping declaration order.
type Schema struct {
	tables []Table
}

// New validates tables and returns a Schema holding a copy of them.
func New(tables ...Table) (Schema, error) {
	seen := make(map[string]bool, len(tables))
	out := make([]Table, 0, len(tables))

	for _, t := range tables {
		if !dbkeep.IsValidTableName(t.Name) {
			return Schema{}, fmt.Errorf("%w: %q", dbkeep.ErrInvalidTableName, t.Name)
		}
		if seen[t.Name] {
			return Schema{}, fmt.Errorf("%w: duplicate table %s", ErrInvalidSchema, t.Name)
		}
		seen[t.Name] = true

		if len(t.Columns) == 0 {
			return Schema{}, fmt.Errorf("%w: table %s has no columns", ErrInvalidSchema, t.Name)
		}

		cols := make([]Column, 0, len(t.Columns))
		colSeen := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if !dbkeep.IsValidTableName(c.Name) {
				return Schema{}, fmt.Errorf("%w: column %s.%s", ErrInvalidSchema, t.Name, c.Name)
			}
			if colSeen[c.Name] {
				return Schema{}, fmt.Errorf("%w: duplicate column %s.%s", ErrInvalidSchema, t.Name, c.Name)
			}
			colSeen[c.Name] = true

			if !knownTypes[c.Type] {
				return Schema{}, fmt.Errorf("%w: %s.%s: %q", ErrUnknownType, t.Name, c.Name, c.Type)
			}
			cols = append(cols, c)
		}

		out = append(out, Table{Name: t.Name, Columns: cols})
	}

	return Schema{tables: out}, nil
}

// Tables returns the tables in declaration order.
func (s Schema) Tables() []Table {
	out := make([]Table, len(s.tables))
	for i, t := range s.tables {
		out[i] = Table{Name: t.Name, Columns: append([]Column(nil), t.Columns...)}
	}
	return out
}

// TableNames returns the table names in declaration order.
func (s Schema) TableNames() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names
}

// Catalog returns the reset catalog for this schema.
func (s Schema) Catalog() (dbkeep.Catalog, error) {
	return dbkeep.NewCatalog(s.TableNames()...)
}

// Load reads a schema from a YAML file. The file has a single "tables"
// mapping of table name to a mapping of column name to semantic type:
//
//	tables:
//	  users:
//	    id: id
//	    email: string
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return Schema{}, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes a schema from YAML bytes.
func Parse(data []byte) (Schema, error) {
	var doc struct {
		Tables yaml.Node `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}

	if doc.Tables.Kind != yaml.MappingNode {
		return Schema{}, fmt.Errorf("%w: tables must be a mapping", ErrInvalidSchema)
	}

	var tables []Table
	for i := 0; i+1 < len(doc.Tables.Content); i += 2 {
		nameNode, colsNode := doc.Tables.Content[i], doc.Tables.Content[i+1]
		if colsNode.Kind != yaml.MappingNode {
			return Schema{}, fmt.Errorf("%w: table %s (line %d) must be a mapping", ErrInvalidSchema, nameNode.Value, colsNode.Line)
		}

		table := Table{Name: nameNode.Value}
		for j := 0; j+1 < len(colsNode.Content); j += 2 {
			table.Columns = append(table.Columns, Column{
				Name: colsNode.Content[j].Value,
				Type: colsNode.Content[j+1].Value,
			})
		}
		tables = append(tables, table)
	}

	return New(tables...)
}

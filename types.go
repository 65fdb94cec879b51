package dbkeep

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Kind identifies a supported database backend.
type Kind string

const (
	// KindSQLite is the embedded, file-based engine.
	KindSQLite Kind = "sqlite"
	// KindPostgres is the client/server engine.
	KindPostgres Kind = "postgres"
)

// IsValid reports whether k names a supported backend.
func (k Kind) IsValid() bool {
	switch k {
	case KindSQLite, KindPostgres:
		return true
	default:
		return false
	}
}

// ParseKind converts s to a Kind. Unknown names return ErrUnsupportedBackend.
func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q (valid kinds: sqlite, postgres)", ErrUnsupportedBackend, s)
	}
	return kind, nil
}

// BackendConfig is the logical database configuration supplied by the process owner.
type BackendConfig struct {
	Kind     Kind   `mapstructure:"kind" validate:"required,oneof=sqlite postgres"`
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"min=0,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// Path overrides the computed SQLite file location.
	Path string `mapstructure:"path"`
	// VerboseErrors logs failing statements and enables query tracing.
	VerboseErrors bool `mapstructure:"verbose_errors"`
}

// Descriptor holds the backend-specific connection details derived from a BackendConfig.
type Descriptor struct {
	Kind Kind

	// SQLite
	Path string

	// PostgreSQL
	Host     string
	Port     int
	User     string
	Password string
	Database string

	VerboseErrors bool
}

// DSN renders the descriptor as a driver connection string.
func (d Descriptor) DSN() string {
	switch d.Kind {
	case KindSQLite:
		return d.Path
	case KindPostgres:
		host := d.Host
		if d.Port > 0 {
			host = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   host,
			Path:   "/" + d.Database,
		}
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else if d.User != "" {
			u.User = url.User(d.User)
		}
		return u.String()
	default:
		return ""
	}
}

// String describes the target without credentials, for logging.
func (d Descriptor) String() string {
	switch d.Kind {
	case KindSQLite:
		return "sqlite:" + d.Path
	case KindPostgres:
		return fmt.Sprintf("postgres:%s@%s:%d/%s", d.User, d.Host, d.Port, d.Database)
	default:
		return string(d.Kind)
	}
}

// CheckResult is the outcome of a successful readiness probe.
// Conn is set when the result comes from a supervised connect; the caller owns it.
type CheckResult struct {
	Ready           bool
	LatestMigration string
	Conn            Conn
}

// MigrationRecord is a row of the migration bookkeeping table.
type MigrationRecord struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Batch         int       `db:"batch"`
	MigrationTime time.Time `db:"migration_time"`
}

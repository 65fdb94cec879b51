package database

import (
	"fmt"
	"path/filepath"

	"github.com/sagarc03/dbkeep"
)

// DefaultDataDir is where SQLite files live unless BackendConfig.Path overrides it.
const DefaultDataDir = "data"

// Resolve derives the backend-specific Descriptor for cfg. It performs no I/O.
func Resolve(cfg dbkeep.BackendConfig) (dbkeep.Descriptor, error) {
	switch cfg.Kind {
	case dbkeep.KindSQLite:
		path := cfg.Path
		if path == "" {
			if cfg.Name == "" {
				return dbkeep.Descriptor{}, fmt.Errorf("resolve sqlite: %w: name or path is required", dbkeep.ErrMissingConfig)
			}
			path = filepath.Join(DefaultDataDir, cfg.Name+".sqlite")
		}
		return dbkeep.Descriptor{
			Kind:          dbkeep.KindSQLite,
			Path:          path,
			VerboseErrors: cfg.VerboseErrors,
		}, nil

	case dbkeep.KindPostgres:
		var missing []string
		if cfg.Name == "" {
			missing = append(missing, "name")
		}
		if cfg.Host == "" {
			missing = append(missing, "host")
		}
		if cfg.User == "" {
			missing = append(missing, "user")
		}
		if len(missing) > 0 {
			return dbkeep.Descriptor{}, fmt.Errorf("resolve postgres: %w: %v", dbkeep.ErrMissingConfig, missing)
		}
		return dbkeep.Descriptor{
			Kind:          dbkeep.KindPostgres,
			Host:          cfg.Host,
			Port:          cfg.Port,
			User:          cfg.User,
			Password:      cfg.Password,
			Database:      cfg.Name,
			VerboseErrors: cfg.VerboseErrors,
		}, nil

	default:
		_, err := dbkeep.ParseKind(string(cfg.Kind))
		return dbkeep.Descriptor{}, fmt.Errorf("resolve: %w", err)
	}
}

// Package config provides configuration loading and validation for dbkeep.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right, or
//     ./dbkeep.yaml when none are given
//  3. Environment variables (DBKEEP_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"dbkeep.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with DBKEEP_ prefix:
//   - database.kind → DBKEEP_DATABASE_KIND
//   - database.host → DBKEEP_DATABASE_HOST
//   - connect.timeout → DBKEEP_CONNECT_TIMEOUT
//
// # Configuration Structure
//
//   - Database: backend kind, name, host, port, user, password, sqlite path override
//   - Connect: supervisor timeout and backoff durations
//   - Schema: optional YAML schema file
//   - Metrics: optional node-exporter textfile path
//   - Log: level (debug, info, warn, error)
//   - Env: dev (colored text logs) or prod (JSON logs)
package config

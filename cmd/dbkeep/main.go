package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/dbkeep/config"
)

var version = "dev"

var (
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "dbkeep",
	Short:   "Connect, migrate and reset application databases",
	Long: `dbkeep manages the lifecycle of an application database on SQLite or
PostgreSQL. It waits for the database to become reachable, applies the
built-in schema migrations and can drop or truncate every schema table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(cmd); err != nil {
			return err
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Env, cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice("config", nil, "config file path, repeatable (default: ./dbkeep.yaml)")
	flags.String("env-file", ".env", "dotenv file loaded before configuration")
	flags.String("db-kind", "", "database kind: sqlite, postgres (default: sqlite, env: DBKEEP_DATABASE_KIND)")
	flags.String("db-name", "", "database name (default: dbkeep, env: DBKEEP_DATABASE_NAME)")
	flags.String("db-host", "", "postgres host (env: DBKEEP_DATABASE_HOST)")
	flags.Int("db-port", 0, "postgres port (default: 5432, env: DBKEEP_DATABASE_PORT)")
	flags.String("db-user", "", "postgres user (env: DBKEEP_DATABASE_USER)")
	flags.String("db-password", "", "postgres password (env: DBKEEP_DATABASE_PASSWORD)")
	flags.String("db-path", "", "sqlite file path (default: data/<name>.sqlite, env: DBKEEP_DATABASE_PATH)")
	flags.Bool("verbose-errors", false, "log failing statements and trace postgres queries")
	flags.Duration("timeout", 0, "how long to keep retrying the connection (default: 30s)")
	flags.Duration("backoff", 0, "pause between connection attempts (default: 1s)")
	flags.String("schema", "", "YAML schema file (default: built-in schema)")
	flags.String("metrics-textfile", "", "write prometheus metrics to this node-exporter textfile")
	flags.String("log-level", "", "log level: debug, info, warn, error (default: info)")
	flags.BoolVar(&jsonOutput, "json", false, "output as JSON")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(unlockCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

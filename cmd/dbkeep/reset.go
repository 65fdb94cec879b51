package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/dbkeep/database"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop or truncate every schema table",
	Long: `Drop every table in the schema, including the migration bookkeeping
tables. With --truncate the tables are emptied instead.

Tables that do not exist are skipped, so reset can be run repeatedly.

Examples:
  # Drop everything, asking first
  dbkeep reset

  # Empty all tables without asking
  dbkeep reset --truncate --yes`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var (
	resetTruncate bool
	resetYes      bool
)

func init() {
	resetCmd.Flags().BoolVar(&resetTruncate, "truncate", false, "empty tables instead of dropping them")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.flushMetrics()

	catalog, err := a.catalog()
	if err != nil {
		return err
	}

	op := "drop"
	if resetTruncate {
		op = "truncate"
	}

	if !resetYes {
		ok, promptErr := confirmReset(op, a.cfg.Database.Name, catalog.Tables())
		if promptErr != nil {
			return promptErr
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	result, err := a.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = result.Conn.Close() }()

	var reset []string
	if resetTruncate {
		reset, err = database.TruncateAllTables(ctx, result.Conn, catalog, a.resetOptions()...)
	} else {
		reset, err = database.DropAllTables(ctx, result.Conn, catalog, a.resetOptions()...)
	}
	if err != nil {
		_ = newFormatter(jsonOutput, quiet).FormatError(os.Stderr, err)
		return err
	}

	slog.Info("reset complete", "op", op, "tables", len(reset), "skipped", catalog.Len()-len(reset))
	return newFormatter(jsonOutput, quiet).FormatReset(os.Stdout, op, reset)
}

// confirmReset asks the operator before destroying data. Answering no
// returns false with a nil error.
func confirmReset(op, name string, tables []string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s %d tables in %s (%s)", capitalize(op), len(tables), name, strings.Join(tables, ", ")),
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, fmt.Errorf("confirm reset: %w", err)
	}
	return true, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

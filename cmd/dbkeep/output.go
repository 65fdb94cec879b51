package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database"
)

// statusReport is what "dbkeep status" prints.
type statusReport struct {
	Target     dbkeep.BackendConfig
	Ready      bool
	Latest     string
	Pending    bool
	Migrations []database.MigrationStatus
}

// formatter formats command results for output.
type formatter interface {
	FormatStatus(w io.Writer, report statusReport) error
	FormatMigrations(w io.Writer, statuses []database.MigrationStatus) error
	FormatApplied(w io.Writer, verb string, names []string) error
	FormatReset(w io.Writer, op string, tables []string) error
	FormatError(w io.Writer, err error) error
}

// newFormatter returns the appropriate formatter based on flags.
func newFormatter(jsonOutput, quiet bool) formatter {
	if jsonOutput {
		return &jsonFormatter{}
	}
	return &humanFormatter{quiet: quiet}
}

type humanFormatter struct {
	quiet bool
}

func (f *humanFormatter) FormatStatus(w io.Writer, report statusReport) error {
	state := "not migrated"
	if report.Ready {
		state = "ready (first migration: " + report.Latest + ")"
	}
	_, _ = fmt.Fprintf(w, "Database: %s %s\n", report.Target.Kind, report.Target.Name)
	_, _ = fmt.Fprintf(w, "State:    %s\n", state)
	if report.Pending {
		_, _ = fmt.Fprintln(w, "Pending:  migrations are waiting, run \"dbkeep migrate\"")
	} else {
		_, _ = fmt.Fprintln(w, "Pending:  none")
	}

	if f.quiet {
		return nil
	}
	_, _ = fmt.Fprintln(w)
	return f.FormatMigrations(w, report.Migrations)
}

func (f *humanFormatter) FormatMigrations(w io.Writer, statuses []database.MigrationStatus) error {
	if len(statuses) == 0 {
		_, _ = fmt.Fprintln(w, "No migrations.")
		return nil
	}

	for _, s := range statuses {
		if s.Applied {
			_, _ = fmt.Fprintf(w, "[x] %-30s batch %d  %s\n", s.Name, s.Batch, s.AppliedAt.Local().Format(time.DateTime))
		} else {
			_, _ = fmt.Fprintf(w, "[ ] %s\n", s.Name)
		}
	}
	return nil
}

func (f *humanFormatter) FormatApplied(w io.Writer, verb string, names []string) error {
	if len(names) == 0 {
		if !f.quiet {
			_, _ = fmt.Fprintf(w, "Nothing %s.\n", verb)
		}
		return nil
	}
	if f.quiet {
		return nil
	}
	for _, n := range names {
		_, _ = fmt.Fprintf(w, "%s: %s\n", capitalize(verb), n)
	}
	return nil
}

func (f *humanFormatter) FormatReset(w io.Writer, op string, tables []string) error {
	if f.quiet {
		return nil
	}
	_, _ = fmt.Fprintf(w, "Reset complete (%s): %d tables\n", op, len(tables))
	for _, t := range tables {
		_, _ = fmt.Fprintf(w, "  %s\n", t)
	}
	return nil
}

func (f *humanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

type jsonFormatter struct{}

type jsonMigration struct {
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	Batch     int        `json:"batch,omitempty"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

func toJSONMigrations(statuses []database.MigrationStatus) []jsonMigration {
	out := make([]jsonMigration, 0, len(statuses))
	for _, s := range statuses {
		m := jsonMigration{Name: s.Name, Applied: s.Applied, Batch: s.Batch}
		if s.Applied {
			at := s.AppliedAt.UTC()
			m.AppliedAt = &at
		}
		out = append(out, m)
	}
	return out
}

func (f *jsonFormatter) FormatStatus(w io.Writer, report statusReport) error {
	return writeJSON(w, map[string]any{
		"kind":       report.Target.Kind,
		"name":       report.Target.Name,
		"ready":      report.Ready,
		"latest":     report.Latest,
		"pending":    report.Pending,
		"migrations": toJSONMigrations(report.Migrations),
	})
}

func (f *jsonFormatter) FormatMigrations(w io.Writer, statuses []database.MigrationStatus) error {
	return writeJSON(w, toJSONMigrations(statuses))
}

func (f *jsonFormatter) FormatApplied(w io.Writer, verb string, names []string) error {
	if names == nil {
		names = []string{}
	}
	return writeJSON(w, map[string]any{verb: names})
}

func (f *jsonFormatter) FormatReset(w io.Writer, op string, tables []string) error {
	if tables == nil {
		tables = []string{}
	}
	return writeJSON(w, map[string]any{"op": op, "tables": tables})
}

func (f *jsonFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, map[string]string{"error": err.Error()})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// loadEnvFile loads the dotenv file into the process environment. A
// missing default file is ignored; a missing explicit one is an error.
// Variables already set in the environment win.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}

	return fmt.Errorf("load env file %s: %w", path, err)
}

// Package cmd holds the treedex command line.
package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/treedex/internal/config"
)

var (
	configPath string
	dbOverride string
)

var rootCmd = &cobra.Command{
	Use:   "treedex",
	Short: "Treedex: resumable file-tree indexing into a tabular sheet",
	Long: `Treedex walks a directory tree breadth-first and writes one row per
file (nesting levels, name, last update, size, link) into a SQLite-backed
sheet. Every run is time-boxed: progress is checkpointed and the traversal
resumes where it left off until it completes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "database", "", "SQLite database path (overrides config)")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if dbOverride != "" {
		cfg.Database = dbOverride
	}
	return cfg, nil
}

// openDatabase opens the SQLite file shared by the sheet and checkpoints.
func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Package main provides the docstore CLI: an HTTP server and one-shot
// add, search and size commands over the configured document store.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/viant/docstore/config"
	"github.com/viant/docstore/executor"
	"github.com/viant/docstore/store"
)

var rootCmd = &cobra.Command{
	Use:   "docstore",
	Short: "Document store over PostgreSQL or SQLite",
	Long: `Stores document trees keyed by id, with embeddings, in a single table.

Configuration is read from DOCSTORE_* environment variables (optionally from
a .env file) and can be overridden with flags:
  DOCSTORE_DRIVER            postgres or sqlite (default: postgres)
  DOCSTORE_HOST              PostgreSQL host (default: 127.0.0.1)
  DOCSTORE_PORT              PostgreSQL port (default: 5432)
  DOCSTORE_PATH              SQLite file (default: docstore.db)
  DOCSTORE_TABLE             table name (default: default_table)
  DOCSTORE_TRAVERSAL_PATHS   default traversal path (default: @r)
  DOCSTORE_DRY_RUN           skip all database I/O (default: false)`,
	SilenceUsage: true,
}

var flags struct {
	envFile        string
	driver         string
	path           string
	table          string
	traversalPaths string
	dryRun         bool
	verbose        bool
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", "", "environment file to load before reading DOCSTORE_* variables")
	pf.StringVar(&flags.driver, "driver", "", "database driver: postgres or sqlite")
	pf.StringVar(&flags.path, "path", "", "SQLite database file")
	pf.StringVar(&flags.table, "table", "", "table name")
	pf.StringVar(&flags.traversalPaths, "traversal-paths", "", "default traversal path, e.g. @r,c")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "skip all database I/O")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd, addCmd, searchCmd, sizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if flags.envFile != "" {
		files = append(files, flags.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	pf := cmd.Flags()
	if pf.Changed("driver") {
		cfg.Driver = flags.driver
	}
	if pf.Changed("path") {
		cfg.Path = flags.path
	}
	if pf.Changed("table") {
		cfg.Table = flags.table
	}
	if pf.Changed("traversal-paths") {
		cfg.TraversalPaths = flags.traversalPaths
	}
	if pf.Changed("dry-run") {
		cfg.DryRun = flags.dryRun
	}
	return cfg, nil
}

// openReader builds the store and its dispatcher. The caller must Close it.
func openReader(ctx context.Context, cmd *cobra.Command, logger *slog.Logger) (*executor.Reader, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := store.New(ctx, cfg, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return executor.NewReader(s), nil
}

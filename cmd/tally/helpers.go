package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-tally/internal/config"
	"github.com/Veraticus/spice-tally/internal/storage"
)

// addDBFlag registers the --db flag that overrides database.path.
func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "database file (default: database.path or "+config.DefaultDatabasePath+")")
}

// databasePath resolves --db, then database.path, then the default location.
func databasePath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return config.ExpandPath(path)
	}
	return config.DatabasePath(viper.GetViper())
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(databasePath(cmd))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// commandContext returns the command's context, falling back to Background
// when the command runs outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

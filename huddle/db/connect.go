package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/go-libsql"
)

// LibSQLEmbeddedConfig holds configuration for embedded libsql connections
type LibSQLEmbeddedConfig struct {
	DatabasePath string // Path to .db file
}

func ConnectToDB(path string) (*sql.DB, error) {
	cfg := &LibSQLEmbeddedConfig{DatabasePath: path}
	return ConnectToDBWithConfig(cfg)
}

func ConnectToDBWithConfig(config *LibSQLEmbeddedConfig) (*sql.DB, error) {
	// Ensure database directory exists for embedded mode
	dir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create database directory %s: %v", dir, err)
	}

	// Ensure database file exists for embedded mode
	if _, err := os.Stat(config.DatabasePath); os.IsNotExist(err) {
		slog.Info("Database not found, creating a new one", "path", config.DatabasePath)
		file, err := os.Create(config.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("could not create db at path %s: %v", config.DatabasePath, err)
		}
		file.Close()
	}

	// Embedded mode with enhanced pragmas
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-64000&_temp_store=memory",
		config.DatabasePath)

	slog.Info("Connecting to embedded libsql", "dsn", dsn)

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql connection: %w", err)
	}

	if err := verifyEmbeddedLibSQL(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// verifyEmbeddedLibSQL ensures built-in features are present. History
// settings are stored as JSON documents, so JSON1 must work.
func verifyEmbeddedLibSQL(db *sql.DB) error {
	ctx := context.Background()

	// Basic connectivity
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("basic connectivity test failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("basic connectivity test failed: unexpected result %d", result)
	}

	// JSON1 is required for the settings document store
	var jsonResult string
	if err := db.QueryRowContext(ctx, "SELECT json_extract('{\"test\":\"value\"}', '$.test')").Scan(&jsonResult); err != nil {
		return fmt.Errorf("JSON1 support check failed: %w", err)
	}
	if jsonResult != "value" {
		return fmt.Errorf("JSON1 support check returned unexpected result %q", jsonResult)
	}
	slog.Info("JSON1 extension verified")

	return nil
}

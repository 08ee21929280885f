package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/reqtrack/internal/config"
)

var db *sql.DB

var dbInitialized bool

// GetDB returns the database connection, initializing if needed
func GetDB() (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	dbPath, err := ResolveDBPath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Open database connection. _txlock=immediate makes every transaction
	// take the write lock at BEGIN, so the allocator's read-max/insert step
	// serializes against concurrent creations instead of failing at COMMIT.
	// _fk=1 enables foreign keys on every pooled connection (cascade deletes
	// on the node tree depend on it).
	db, err = sql.Open("sqlite3", "file:"+dbPath+"?_txlock=immediate&_busy_timeout=5000&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations on first connection (but avoid recursion)
	if !dbInitialized {
		dbInitialized = true
		if err := InitSchema(); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return db, nil
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// ResolveDBPath returns the path to the database file.
// Resolution order: REQTRACK_DB env var, project config in cwd, then
// ~/.reqtrack/reqtrack.db.
func ResolveDBPath() (string, error) {
	if p := os.Getenv("REQTRACK_DB"); p != "" {
		return p, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		if cfg, err := config.LoadConfig(cwd); err == nil && cfg.DBPath != "" {
			return cfg.DBPath, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".reqtrack", "reqtrack.db"), nil
}

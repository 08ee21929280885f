package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/example/reqtrack/internal/adapters/sqlite"
	"github.com/example/reqtrack/internal/db"
	"github.com/example/reqtrack/internal/ports/secondary"
)

// setupTestDB opens an in-memory database with the authoritative schema.
// A single connection keeps :memory: stable across the pool and serializes
// transactions the way the production _txlock=immediate DSN does.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_fk=1")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// insertNode allocates the next sequence under parent and inserts a node,
// the way the service's allocation cycle does.
func insertNode(t *testing.T, repo *sqlite.NodeRepository, parent *secondary.NodeRecord, level, hierarchicalID, title string) *secondary.NodeRecord {
	t.Helper()

	var parentID *int64
	if parent != nil {
		parentID = &parent.ID
	}

	record := &secondary.NodeRecord{
		HierarchicalID: hierarchicalID,
		Title:          title,
		Level:          level,
		ParentID:       parentID,
	}

	err := repo.InTx(context.Background(), func(tx secondary.NodeTx) error {
		maxSeq, err := tx.FindMaxSequence(parentID, level)
		if err != nil {
			return err
		}
		record.Sequence = maxSeq + 1
		return tx.Insert(record)
	})
	if err != nil {
		t.Fatalf("insertNode(%s) failed: %v", hierarchicalID, err)
	}

	return record
}

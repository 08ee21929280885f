// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/reqtrack/internal/core/node"
	"github.com/example/reqtrack/internal/ports/secondary"
)

// NodeRepository implements secondary.NodeRepository with SQLite.
type NodeRepository struct {
	db *sql.DB
}

// NewNodeRepository creates a new SQLite node repository.
func NewNodeRepository(db *sql.DB) *NodeRepository {
	return &NodeRepository{db: db}
}

const nodeSelectCols = "id, hierarchical_id, title, description, level, status, parent_id, sequence, created_at, updated_at"

// scanNode scans a node row into a NodeRecord.
func scanNode(scanner interface {
	Scan(dest ...any) error
}) (*secondary.NodeRecord, error) {
	var (
		desc      sql.NullString
		parentID  sql.NullInt64
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.NodeRecord{}
	err := scanner.Scan(
		&record.ID, &record.HierarchicalID, &record.Title, &desc,
		&record.Level, &record.Status, &parentID, &record.Sequence,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Description = desc.String
	if parentID.Valid {
		p := parentID.Int64
		record.ParentID = &p
	}
	record.CreatedAt = createdAt
	record.UpdatedAt = updatedAt

	return record, nil
}

// isUniqueViolation reports whether err is a SQLite uniqueness violation,
// i.e. the uniqueness backstop caught a lost allocation race. Other
// constraint classes (foreign key, CHECK, NOT NULL) are not retryable and
// must not be classified as conflicts.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isForeignKeyViolation reports whether err is a SQLite foreign key
// violation, e.g. the parent row was deleted between resolution and insert.
func isForeignKeyViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// InTx runs fn inside a single write transaction. With _txlock=immediate the
// write lock is taken at BEGIN, so two concurrent allocations under the same
// parent serialize here rather than colliding at insert.
func (r *NodeRepository) InTx(ctx context.Context, fn func(tx secondary.NodeTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&nodeTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", secondary.ErrConflict, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// nodeTx implements secondary.NodeTx over an open transaction.
type nodeTx struct {
	tx *sql.Tx
}

// FindMaxSequence returns the highest sequence ever allocated in the
// (parentID, level) sibling group. The live-row MAX alone would reuse a
// sequence after the highest sibling is deleted, so the high-water mark in
// node_sequences is consulted as well (0 stands for the NULL parent group).
func (t *nodeTx) FindMaxSequence(parentID *int64, level string) (int, error) {
	var liveMax int
	var err error
	if parentID == nil {
		err = t.tx.QueryRow(
			"SELECT COALESCE(MAX(sequence), 0) FROM nodes WHERE parent_id IS NULL AND level = ?",
			level,
		).Scan(&liveMax)
	} else {
		err = t.tx.QueryRow(
			"SELECT COALESCE(MAX(sequence), 0) FROM nodes WHERE parent_id = ? AND level = ?",
			*parentID, level,
		).Scan(&liveMax)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query max sequence: %w", err)
	}

	var highWater int
	err = t.tx.QueryRow(
		"SELECT COALESCE(MAX(last_sequence), 0) FROM node_sequences WHERE parent_id = ? AND level = ?",
		sequenceGroupKey(parentID), level,
	).Scan(&highWater)
	if err != nil {
		return 0, fmt.Errorf("failed to query sequence high-water mark: %w", err)
	}

	if highWater > liveMax {
		return highWater, nil
	}
	return liveMax, nil
}

// Insert persists a new node and advances the sibling group's high-water
// mark in the same transaction.
func (t *nodeTx) Insert(record *secondary.NodeRecord) error {
	if record.Status == "" {
		record.Status = "not_started"
	}

	var parentID sql.NullInt64
	if record.ParentID != nil {
		parentID = sql.NullInt64{Int64: *record.ParentID, Valid: true}
	}

	res, err := t.tx.Exec(
		`INSERT INTO nodes (hierarchical_id, title, description, level, status, parent_id, sequence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.HierarchicalID, record.Title, nullableString(record.Description),
		record.Level, record.Status, parentID, record.Sequence,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: parent row missing", secondary.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", secondary.ErrConflict, err)
		}
		return fmt.Errorf("failed to insert node: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted node id: %w", err)
	}
	record.ID = id

	_, err = t.tx.Exec(
		`INSERT INTO node_sequences (parent_id, level, last_sequence)
		 VALUES (?, ?, ?)
		 ON CONFLICT(parent_id, level) DO UPDATE SET
		   last_sequence = MAX(last_sequence, excluded.last_sequence)`,
		sequenceGroupKey(record.ParentID), record.Level, record.Sequence,
	)
	if err != nil {
		return fmt.Errorf("failed to advance sequence high-water mark: %w", err)
	}

	// Pick up the store-assigned timestamps.
	row := t.tx.QueryRow("SELECT created_at, updated_at FROM nodes WHERE id = ?", id)
	if err := row.Scan(&record.CreatedAt, &record.UpdatedAt); err != nil {
		return fmt.Errorf("failed to read back inserted node: %w", err)
	}

	return nil
}

// sequenceGroupKey maps a nullable parent reference onto the node_sequences
// primary key; 0 is reserved for root-level groups (AUTOINCREMENT ids start
// at 1, so no real node collides with it).
func sequenceGroupKey(parentID *int64) int64 {
	if parentID == nil {
		return 0
	}
	return *parentID
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetByID retrieves a node by its surrogate key.
func (r *NodeRepository) GetByID(ctx context.Context, id int64) (*secondary.NodeRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+nodeSelectCols+" FROM nodes WHERE id = ?", id)
	record, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: node %d", secondary.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return record, nil
}

// GetByHierarchicalID retrieves a node by its hierarchical identifier.
func (r *NodeRepository) GetByHierarchicalID(ctx context.Context, hierarchicalID string) (*secondary.NodeRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+nodeSelectCols+" FROM nodes WHERE hierarchical_id = ?", hierarchicalID)
	record, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: node %s", secondary.ErrNotFound, hierarchicalID)
		}
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return record, nil
}

// List retrieves nodes matching the given filters, ordered by hierarchical
// identifier so siblings and subtrees group together. Ordering compares the
// numeric sequences, not the raw strings: string order would put REQ-1000
// between REQ-001 and REQ-002. The limit applies after ordering.
func (r *NodeRepository) List(ctx context.Context, filters secondary.NodeFilters) ([]*secondary.NodeRecord, error) {
	query := "SELECT " + nodeSelectCols + " FROM nodes"
	var conds []string
	var args []any

	if filters.Level != "" {
		conds = append(conds, "level = ?")
		args = append(args, filters.Level)
	}
	if filters.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filters.Status)
	}
	if filters.ParentID != nil {
		conds = append(conds, "parent_id = ?")
		args = append(args, *filters.ParentID)
	}
	if filters.Search != "" {
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filters.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	var records []*secondary.NodeRecord
	for rows.Next() {
		record, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return node.CompareIDs(records[i].HierarchicalID, records[j].HierarchicalID) < 0
	})
	if filters.Limit > 0 && len(records) > filters.Limit {
		records = records[:filters.Limit]
	}
	return records, nil
}

// ListChildren retrieves the direct children of a node in sequence order.
func (r *NodeRepository) ListChildren(ctx context.Context, parentID int64) ([]*secondary.NodeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+nodeSelectCols+" FROM nodes WHERE parent_id = ? ORDER BY sequence",
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	var records []*secondary.NodeRecord
	for rows.Next() {
		record, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Update persists a node's mutable fields and, when change is non-nil, the
// status transition's history row in the same transaction. Identifier,
// parent, level and sequence are deliberately not part of the statement.
func (r *NodeRepository) Update(ctx context.Context, record *secondary.NodeRecord, change *secondary.HistoryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE nodes SET title = ?, description = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		record.Title, nullableString(record.Description), record.Status, record.ID,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("%w: node %d", secondary.ErrNotFound, record.ID)
	}

	if change != nil {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO node_history (node_id, from_status, to_status) VALUES (?, ?, ?)",
			change.NodeID, change.FromStatus, change.ToStatus,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record status change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

// Delete removes a node; descendants go with it via ON DELETE CASCADE.
// The sibling group's high-water mark in node_sequences is left untouched so
// the freed sequence is never handed out again.
func (r *NodeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: node %d", secondary.ErrNotFound, id)
	}
	return nil
}

// History retrieves a node's status transitions, oldest first.
func (r *NodeRepository) History(ctx context.Context, nodeID int64) ([]*secondary.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, node_id, from_status, to_status, changed_at FROM node_history WHERE node_id = ? ORDER BY id",
		nodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get node history: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.HistoryRecord
	for rows.Next() {
		entry := &secondary.HistoryRecord{}
		if err := rows.Scan(&entry.ID, &entry.NodeID, &entry.FromStatus, &entry.ToStatus, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

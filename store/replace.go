package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// BulkReplace is an in-progress full replace of one table: the old rows are
// deleted and the new ones inserted in a single transaction, so readers never
// observe a half-loaded table. Loads are never incremental upserts.
type BulkReplace struct {
	tx       *sql.Tx
	stmt     *sql.Stmt
	inserted int64
}

// Replace begins a full replace of table. Rows are added with Add and the
// whole operation lands atomically on Commit.
func (s *Store) Replace(table string, columns []string) (*BulkReplace, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		tx.Rollback()
		return nil, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders))
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &BulkReplace{tx: tx, stmt: stmt}, nil
}

// Add inserts one row. Values must match the columns given to Replace.
func (r *BulkReplace) Add(values ...any) error {
	if _, err := r.stmt.Exec(values...); err != nil {
		return err
	}
	r.inserted++
	return nil
}

// Inserted returns the number of rows added so far.
func (r *BulkReplace) Inserted() int64 { return r.inserted }

// Commit makes the replace visible.
func (r *BulkReplace) Commit() error {
	r.stmt.Close()
	return r.tx.Commit()
}

// Rollback abandons the replace, leaving the previous rows in place.
func (r *BulkReplace) Rollback() error {
	r.stmt.Close()
	return r.tx.Rollback()
}

// Upsert inserts or replaces one row keyed by the table's primary key.
// Used by incremental sources (announcements) where records re-appear
// across overlapping downloads.
func (s *Store) Upsert(table string, columns []string, values ...any) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	_, err := s.db.Exec(fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders), values...)
	return err
}

package store

import (
	"context"
	"database/sql"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/roach88/factordb/internal/primality"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	return createTestStoreWithLimit(t, 0)
}

func createTestStoreWithLimit(t *testing.T, limit int) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, Options{MaxConnections: limit})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertFactor inserts a factor in its own committed scope.
func insertFactor(t *testing.T, s *Store, v int64, p primality.Status) *FactorRow {
	t.Helper()
	var row *FactorRow
	err := s.WithConn(context.Background(), func(c *Conn) error {
		var err error
		row, err = c.InsertFactor(context.Background(), big.NewInt(v), p)
		if err != nil {
			return err
		}
		return c.Commit()
	})
	if err != nil {
		t.Fatalf("insert factor %d: %v", v, err)
	}
	return row
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info(%s): %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

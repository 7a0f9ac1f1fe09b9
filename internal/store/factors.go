package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/roach88/factordb/internal/codec"
	"github.com/roach88/factordb/internal/primality"
)

// FactorByID returns the factor with the given id.
// Returns sql.ErrNoRows (wrapped) if not found.
func (c *Conn) FactorByID(ctx context.Context, id int64) (*FactorRow, error) {
	row, err := c.QueryRow(ctx, "SELECT "+factorColumns+" FROM factors WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("read factor %d: %w", id, err)
	}
	r, err := scanFactor(row)
	if err != nil {
		return nil, fmt.Errorf("read factor %d: %w", id, err)
	}
	return r, nil
}

// FactorByValue returns the factor with the given value.
// Returns sql.ErrNoRows (wrapped) if not found.
func (c *Conn) FactorByValue(ctx context.Context, v *big.Int) (*FactorRow, error) {
	row, err := c.QueryRow(ctx, "SELECT "+factorColumns+" FROM factors WHERE value = ?", codec.Encode(v))
	if err != nil {
		return nil, fmt.Errorf("read factor by value: %w", err)
	}
	r, err := scanFactor(row)
	if err != nil {
		return nil, fmt.Errorf("read factor by value: %w", err)
	}
	return r, nil
}

// InsertFactor inserts a new factor without a split and returns its row.
// The value must not already exist (UNIQUE constraint).
func (c *Conn) InsertFactor(ctx context.Context, v *big.Int, p primality.Status) (*FactorRow, error) {
	res, err := c.Exec(ctx, "INSERT INTO factors (value, primality) VALUES (?, ?)", codec.Encode(v), int(p))
	if err != nil {
		return nil, fmt.Errorf("insert factor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert factor: last insert id: %w", err)
	}
	return &FactorRow{ID: id, Value: new(big.Int).Set(v), Primality: p}, nil
}

// SetSplit records (f1, f2) as the factor's split and marks it composite.
func (c *Conn) SetSplit(ctx context.Context, id, f1ID, f2ID int64) error {
	_, err := c.Exec(ctx,
		"UPDATE factors SET f1_id = ?, f2_id = ?, primality = ? WHERE id = ?",
		f1ID, f2ID, int(primality.Composite), id)
	if err != nil {
		return fmt.Errorf("set split of factor %d: %w", id, err)
	}
	return nil
}

// SetPrimality updates a factor's primality.
func (c *Conn) SetPrimality(ctx context.Context, id int64, p primality.Status) error {
	res, err := c.Exec(ctx, "UPDATE factors SET primality = ? WHERE id = ?", int(p), id)
	if err != nil {
		return fmt.Errorf("set primality of factor %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set primality of factor %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ArchiveSplit stores a superseded split. Archiving the same triple twice
// is a no-op.
func (c *Conn) ArchiveSplit(ctx context.Context, a ArchivedSplit) error {
	_, err := c.Exec(ctx, `
		INSERT INTO factors_old (fac_id, f1_id, f2_id)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`, a.FactorID, a.F1ID, a.F2ID)
	if err != nil {
		return fmt.Errorf("archive split of factor %d: %w", a.FactorID, err)
	}
	return nil
}

// ArchivedSplits returns every archived split of a factor, oldest first.
// Returns an empty slice if there are none.
func (c *Conn) ArchivedSplits(ctx context.Context, factorID int64) ([]ArchivedSplit, error) {
	rows, err := c.Query(ctx, `
		SELECT fac_id, f1_id, f2_id FROM factors_old
		WHERE fac_id = ?
		ORDER BY rowid ASC
	`, factorID)
	if err != nil {
		return nil, fmt.Errorf("query archived splits: %w", err)
	}
	defer rows.Close()

	out := []ArchivedSplit{}
	for rows.Next() {
		var a ArchivedSplit
		if err := rows.Scan(&a.FactorID, &a.F1ID, &a.F2ID); err != nil {
			return nil, fmt.Errorf("scan archived split: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived splits: %w", err)
	}
	return out, nil
}

// ParentsOf returns the ids of every factor whose current split contains id.
func (c *Conn) ParentsOf(ctx context.Context, id int64) ([]int64, error) {
	return c.queryIDs(ctx, "SELECT id FROM factors WHERE f1_id = ? OR f2_id = ? ORDER BY id", id, id)
}

// ArchivedParentsOf returns the ids of every factor that has an archived
// split containing id.
func (c *Conn) ArchivedParentsOf(ctx context.Context, id int64) ([]int64, error) {
	return c.queryIDs(ctx,
		"SELECT DISTINCT fac_id FROM factors_old WHERE f1_id = ? OR f2_id = ? ORDER BY fac_id", id, id)
}

func (c *Conn) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

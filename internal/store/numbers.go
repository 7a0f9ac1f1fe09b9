package store

import (
	"context"
	"fmt"
	"math/big"

	"github.com/roach88/factordb/internal/codec"
)

// NumberByID returns the number with the given id.
// Returns sql.ErrNoRows (wrapped) if not found.
func (c *Conn) NumberByID(ctx context.Context, id int64) (*NumberRow, error) {
	row, err := c.QueryRow(ctx, "SELECT "+numberColumns+" FROM numbers WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("read number %d: %w", id, err)
	}
	r, err := scanNumber(row)
	if err != nil {
		return nil, fmt.Errorf("read number %d: %w", id, err)
	}
	return r, nil
}

// NumberByValue returns the number with the given value.
// Returns sql.ErrNoRows (wrapped) if not found.
func (c *Conn) NumberByValue(ctx context.Context, v *big.Int) (*NumberRow, error) {
	row, err := c.QueryRow(ctx, "SELECT "+numberColumns+" FROM numbers WHERE value = ?", codec.Encode(v))
	if err != nil {
		return nil, fmt.Errorf("read number by value: %w", err)
	}
	r, err := scanNumber(row)
	if err != nil {
		return nil, fmt.Errorf("read number by value: %w", err)
	}
	return r, nil
}

// NumberState is the mutable part of a number row.
type NumberState struct {
	SmallPrimes []uint64
	CofactorID  int64
	Complete    bool
}

// InsertNumber inserts a new number and returns its row.
func (c *Conn) InsertNumber(ctx context.Context, v *big.Int, st NumberState) (*NumberRow, error) {
	packed := codec.PackSmallPrimes(st.SmallPrimes)
	res, err := c.Exec(ctx, `
		INSERT INTO numbers (value, spf2, spf4, spf8, cof_id, complete)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		codec.Encode(v),
		nullBlob(packed.Spf2),
		nullBlob(packed.Spf4),
		nullBlob(packed.Spf8),
		nullID(st.CofactorID),
		st.Complete,
	)
	if err != nil {
		return nil, fmt.Errorf("insert number: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert number: last insert id: %w", err)
	}
	return c.NumberByID(ctx, id)
}

// UpdateNumber replaces the packed primes, cofactor and complete flag.
func (c *Conn) UpdateNumber(ctx context.Context, id int64, st NumberState) error {
	packed := codec.PackSmallPrimes(st.SmallPrimes)
	_, err := c.Exec(ctx, `
		UPDATE numbers SET spf2 = ?, spf4 = ?, spf8 = ?, cof_id = ?, complete = ?
		WHERE id = ?
	`,
		nullBlob(packed.Spf2),
		nullBlob(packed.Spf4),
		nullBlob(packed.Spf8),
		nullID(st.CofactorID),
		st.Complete,
		id,
	)
	if err != nil {
		return fmt.Errorf("update number %d: %w", id, err)
	}
	return nil
}

// MarkIncomplete clears the complete flag of every listed number.
func (c *Conn) MarkIncomplete(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := c.Exec(ctx, "UPDATE numbers SET complete = 0 WHERE id = ?", id); err != nil {
			return fmt.Errorf("mark number %d incomplete: %w", id, err)
		}
	}
	return nil
}

// NumbersWithCofactor returns the ids of numbers whose cofactor is factorID.
func (c *Conn) NumbersWithCofactor(ctx context.Context, factorID int64) ([]int64, error) {
	return c.queryIDs(ctx, "SELECT id FROM numbers WHERE cof_id = ? ORDER BY id", factorID)
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/factordb/internal/primality"
)

// SmallestFactors returns unsplit factors with the given status, smallest
// value first. limit <= 0 means no limit; maxBits <= 0 means no size filter.
//
// Because stored values are minimal big-endian, ORDER BY length(value),
// value is numeric order, and a bit-length bound becomes a bound on byte
// length plus the leading byte.
func (c *Conn) SmallestFactors(ctx context.Context, status primality.Status, limit, maxBits int) ([]*FactorRow, error) {
	query := "SELECT " + factorColumns + " FROM factors WHERE primality = ? AND f1_id IS NULL"
	args := []any{int(status)}

	if maxBits > 0 {
		maxBytes := (maxBits + 7) / 8
		extra := maxBits % 8
		if extra == 0 {
			query += " AND length(value) <= ?"
			args = append(args, maxBytes)
		} else {
			// leading byte of a maxBytes-long value must fit in `extra` bits
			query += " AND (length(value) < ? OR (length(value) = ? AND substr(value, 1, 1) < ?))"
			args = append(args, maxBytes, maxBytes, []byte{byte(1 << extra)})
		}
	}

	query += " ORDER BY length(value), value"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query smallest %s factors: %w", status, err)
	}
	defer rows.Close()

	out := []*FactorRow{}
	for rows.Next() {
		r, err := scanFactor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan factor: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate factors: %w", err)
	}
	return out, nil
}

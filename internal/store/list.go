package store

import (
	"context"
	"fmt"
)

// AllFactors returns every factor in numeric order.
func (c *Conn) AllFactors(ctx context.Context) ([]*FactorRow, error) {
	rows, err := c.Query(ctx, "SELECT "+factorColumns+" FROM factors ORDER BY length(value), value")
	if err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
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

// AllNumbers returns every number in numeric order.
func (c *Conn) AllNumbers(ctx context.Context) ([]*NumberRow, error) {
	rows, err := c.Query(ctx, "SELECT "+numberColumns+" FROM numbers ORDER BY length(value), value")
	if err != nil {
		return nil, fmt.Errorf("list numbers: %w", err)
	}
	defer rows.Close()

	out := []*NumberRow{}
	for rows.Next() {
		r, err := scanNumber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan number: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate numbers: %w", err)
	}
	return out, nil
}

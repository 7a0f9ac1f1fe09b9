package store

import (
	"context"
	"fmt"

	"github.com/roach88/factordb/internal/primality"
)

// Stats summarizes table contents.
type Stats struct {
	Numbers         int64                      `json:"numbers"`
	CompleteNumbers int64                      `json:"complete_numbers"`
	Factors         int64                      `json:"factors"`
	ByPrimality     map[primality.Status]int64 `json:"-"`
	ArchivedSplits  int64                      `json:"archived_splits"`
}

// Stats counts rows in every table.
func (c *Conn) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByPrimality: map[primality.Status]int64{}}

	counts := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM numbers", &st.Numbers},
		{"SELECT COUNT(*) FROM numbers WHERE complete = 1", &st.CompleteNumbers},
		{"SELECT COUNT(*) FROM factors", &st.Factors},
		{"SELECT COUNT(*) FROM factors_old", &st.ArchivedSplits},
	}
	for _, q := range counts {
		row, err := c.QueryRow(ctx, q.query)
		if err != nil {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
		if err := row.Scan(q.dst); err != nil {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
	}

	rows, err := c.Query(ctx, "SELECT primality, COUNT(*) FROM factors GROUP BY primality")
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p int
			n int64
		)
		if err := rows.Scan(&p, &n); err != nil {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
		st.ByPrimality[primality.Status(p)] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

package cli

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/roach88/factordb/internal/codec"
)

// ref is a command-line reference to a stored row: "#12" is an id,
// anything else a decimal value.
type ref struct {
	id    int64
	value *big.Int
}

func parseRef(s string) (ref, error) {
	if rest, ok := strings.CutPrefix(strings.TrimSpace(s), "#"); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return ref{}, fmt.Errorf("invalid id %q", s)
		}
		return ref{id: id}, nil
	}
	v, err := codec.ParseValue(s)
	if err != nil {
		return ref{}, err
	}
	return ref{value: v}, nil
}

func (s *session) numberID(ctx context.Context, r ref) (int64, error) {
	if r.value == nil {
		return r.id, nil
	}
	row, err := s.eng.NumberByValue(ctx, r.value)
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *session) factorID(ctx context.Context, r ref) (int64, error) {
	if r.value == nil {
		return r.id, nil
	}
	row, err := s.eng.FactorByValue(ctx, r.value)
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

// showNumber renders a number with its current factorization.
func (s *session) showNumber(ctx context.Context, id int64) (NumberView, error) {
	row, err := s.eng.NumberByID(ctx, id)
	if err != nil {
		return NumberView{}, err
	}
	entries, err := s.eng.NumberFactorization(ctx, id)
	if err != nil {
		return NumberView{}, err
	}
	return numberView(row, entries), nil
}

// showFactor renders a factor with its factorization and archived splits.
func (s *session) showFactor(ctx context.Context, id int64) (FactorView, error) {
	row, err := s.eng.FactorByID(ctx, id)
	if err != nil {
		return FactorView{}, err
	}
	v := factorView(row)
	entries, err := s.eng.FactorFactorization(ctx, id)
	if err != nil {
		return FactorView{}, err
	}
	if row.HasSplit() {
		v.Factors = entryViews(entries)
	}
	archived, err := s.eng.ArchivedSplits(ctx, id)
	if err != nil {
		return FactorView{}, err
	}
	for _, a := range archived {
		v.Archived = append(v.Archived, SplitView{F1ID: a.F1ID, F2ID: a.F2ID})
	}
	return v, nil
}

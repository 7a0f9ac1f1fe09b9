package factordb

import (
	"context"
	"fmt"
	"math/big"

	"github.com/roach88/factordb/internal/store"
)

// Traversals over split links. All of them use an explicit worklist and a
// visited set; the factor graph can be deep and archives make it a DAG
// with shared nodes.

// dependentNumbers returns the ids of every number whose factorization
// transitively contains factorID: as its cofactor, or via a current or
// archived split of some ancestor.
func dependentNumbers(ctx context.Context, c *store.Conn, factorID int64) ([]int64, error) {
	var (
		out      []int64
		seenNum  = map[int64]bool{}
		seen     = map[int64]bool{factorID: true}
		worklist = []int64{factorID}
	)
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]

		nums, err := c.NumbersWithCofactor(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, n := range nums {
			if !seenNum[n] {
				seenNum[n] = true
				out = append(out, n)
			}
		}

		parents, err := parentsOf(ctx, c, id)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if !seen[p] {
				seen[p] = true
				worklist = append(worklist, p)
			}
		}
	}
	return out, nil
}

// factorRef is a factor id with its value.
type factorRef struct {
	ID    int64
	Value *big.Int
}

// multiplesOf returns every factor reachable upward from factorID through
// current and archived splits, excluding factorID itself, in visit order.
func multiplesOf(ctx context.Context, c *store.Conn, factorID int64) ([]factorRef, error) {
	var (
		out      []factorRef
		seen     = map[int64]bool{factorID: true}
		worklist = []int64{factorID}
	)
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]

		parents, err := parentsOf(ctx, c, id)
		if err != nil {
			return nil, err
		}
		for _, p := range parents {
			if seen[p] {
				continue
			}
			seen[p] = true
			row, err := c.FactorByID(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("load multiple %d: %w", p, err)
			}
			out = append(out, factorRef{ID: p, Value: row.Value})
			worklist = append(worklist, p)
		}
	}
	return out, nil
}

// divisorsOf returns factorID and every factor reachable downward from it
// through current and archived splits, in visit order.
func divisorsOf(ctx context.Context, c *store.Conn, factorID int64) ([]factorRef, error) {
	var (
		out      []factorRef
		seen     = map[int64]bool{}
		worklist = []int64{factorID}
	)
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true

		row, err := c.FactorByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load divisor %d: %w", id, err)
		}
		out = append(out, factorRef{ID: id, Value: row.Value})
		worklist = append(worklist, row.F1ID, row.F2ID)

		old, err := c.ArchivedSplits(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, a := range old {
			worklist = append(worklist, a.F1ID, a.F2ID)
		}
	}
	return out, nil
}

func parentsOf(ctx context.Context, c *store.Conn, id int64) ([]int64, error) {
	current, err := c.ParentsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	archived, err := c.ArchivedParentsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return append(current, archived...), nil
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/roach88/factordb/internal/codec"
	"github.com/roach88/factordb/internal/primality"
)

// FactorRow is one row of the factors table.
// F1ID and F2ID are zero when the factor has no recorded split.
type FactorRow struct {
	ID        int64
	Value     *big.Int
	Primality primality.Status
	F1ID      int64
	F2ID      int64
}

// HasSplit reports whether the factor has a recorded split.
func (r *FactorRow) HasSplit() bool {
	return r.F1ID != 0
}

func (r *FactorRow) String() string {
	return fmt.Sprintf("FactorRow(id=%d, bits=%d, primality=%s, f1=%d, f2=%d)",
		r.ID, r.Value.BitLen(), r.Primality, r.F1ID, r.F2ID)
}

// NumberRow is one row of the numbers table.
// SmallPrimes is the concatenation of the three packed buckets (sorted per
// bucket, hence sorted overall). CofactorID is zero when there is none.
type NumberRow struct {
	ID          int64
	Value       *big.Int
	SmallPrimes []uint64
	CofactorID  int64
	Complete    bool
}

func (r *NumberRow) String() string {
	return fmt.Sprintf("NumberRow(id=%d, bits=%d, small=%d, cof=%d, complete=%t)",
		r.ID, r.Value.BitLen(), len(r.SmallPrimes), r.CofactorID, r.Complete)
}

// ArchivedSplit is a superseded split of FactorID.
type ArchivedSplit struct {
	FactorID int64
	F1ID     int64
	F2ID     int64
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

type scanner interface {
	Scan(dest ...any) error
}

const factorColumns = "id, value, primality, f1_id, f2_id"

func scanFactor(s scanner) (*FactorRow, error) {
	var (
		r     FactorRow
		value []byte
		prim  int
		f1    sql.NullInt64
		f2    sql.NullInt64
	)
	if err := s.Scan(&r.ID, &value, &prim, &f1, &f2); err != nil {
		return nil, err
	}
	if f1.Valid != f2.Valid {
		return nil, fmt.Errorf("factor id %d: half-recorded split", r.ID)
	}
	r.Value = codec.Decode(value)
	r.Primality = primality.Status(prim)
	r.F1ID = f1.Int64
	r.F2ID = f2.Int64
	return &r, nil
}

const numberColumns = "id, value, spf2, spf4, spf8, cof_id, complete"

func scanNumber(s scanner) (*NumberRow, error) {
	var (
		r      NumberRow
		value  []byte
		packed codec.PackedPrimes
		cof    sql.NullInt64
	)
	if err := s.Scan(&r.ID, &value, &packed.Spf2, &packed.Spf4, &packed.Spf8, &cof, &r.Complete); err != nil {
		return nil, err
	}
	primes, err := codec.UnpackSmallPrimes(packed)
	if err != nil {
		return nil, fmt.Errorf("number id %d: %w", r.ID, err)
	}
	r.Value = codec.Decode(value)
	r.SmallPrimes = primes
	r.CofactorID = cof.Int64
	return &r, nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// nullBlob maps an empty bucket to NULL.
func nullBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

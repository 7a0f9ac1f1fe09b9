package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/factordb/internal/factordb"
	"github.com/roach88/factordb/internal/primality"
	"github.com/roach88/factordb/internal/store"
)

// Views are the payloads printed by commands. Values are decimal strings
// so that JSON consumers never lose precision.

// EntryView is one element of an expanded factorization.
type EntryView struct {
	Value     string `json:"value"`
	Primality string `json:"primality"`
	FactorID  int64  `json:"factor_id,omitempty"`
}

func entryViews(entries []factordb.FactorEntry) []EntryView {
	out := make([]EntryView, len(entries))
	for i, fe := range entries {
		out[i] = EntryView{Value: fe.Value.String(), Primality: fe.Primality.String(), FactorID: fe.FactorID}
	}
	return out
}

// NumberView describes a number and its factorization.
type NumberView struct {
	ID          int64       `json:"id"`
	Value       string      `json:"value"`
	Complete    bool        `json:"complete"`
	SmallPrimes []uint64    `json:"small_primes"`
	CofactorID  int64       `json:"cofactor_id,omitempty"`
	Created     *bool       `json:"created,omitempty"`
	Factors     []EntryView `json:"factors,omitempty"`
}

func numberView(row *store.NumberRow, entries []factordb.FactorEntry) NumberView {
	small := row.SmallPrimes
	if small == nil {
		small = []uint64{}
	}
	return NumberView{
		ID:          row.ID,
		Value:       row.Value.String(),
		Complete:    row.Complete,
		SmallPrimes: small,
		CofactorID:  row.CofactorID,
		Factors:     entryViews(entries),
	}
}

func (v NumberView) String() string {
	var b strings.Builder
	state := "incomplete"
	if v.Complete {
		state = "complete"
	}
	fmt.Fprintf(&b, "number #%d: %s (%s)", v.ID, v.Value, state)
	if v.Created != nil && !*v.Created {
		b.WriteString(" [already registered]")
	}
	if len(v.Factors) > 0 {
		b.WriteString("\n")
		writeEntries(&b, v.Factors)
	}
	return b.String()
}

func writeEntries(b *strings.Builder, entries []EntryView) {
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "  %s %s", e.Value, e.Primality)
		if e.FactorID != 0 {
			fmt.Fprintf(b, " (factor #%d)", e.FactorID)
		}
	}
}

// FactorView describes a stored factor.
type FactorView struct {
	ID        int64       `json:"id"`
	Value     string      `json:"value"`
	Bits      int         `json:"bits"`
	Primality string      `json:"primality"`
	F1ID      int64       `json:"f1_id,omitempty"`
	F2ID      int64       `json:"f2_id,omitempty"`
	Archived  []SplitView `json:"archived,omitempty"`
	Factors   []EntryView `json:"factors,omitempty"`
}

// SplitView is an archived split.
type SplitView struct {
	F1ID int64 `json:"f1_id"`
	F2ID int64 `json:"f2_id"`
}

func factorView(row *store.FactorRow) FactorView {
	return FactorView{
		ID:        row.ID,
		Value:     row.Value.String(),
		Bits:      row.Value.BitLen(),
		Primality: row.Primality.String(),
		F1ID:      row.F1ID,
		F2ID:      row.F2ID,
	}
}

func (v FactorView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "factor #%d: %s (%d bits, %s)", v.ID, v.Value, v.Bits, v.Primality)
	if v.F1ID != 0 {
		fmt.Fprintf(&b, "\n  split: #%d * #%d", v.F1ID, v.F2ID)
	}
	for _, s := range v.Archived {
		fmt.Fprintf(&b, "\n  archived: #%d * #%d", s.F1ID, s.F2ID)
	}
	if len(v.Factors) > 0 {
		b.WriteString("\n")
		writeEntries(&b, v.Factors)
	}
	return b.String()
}

// FactorList is a work queue listing.
type FactorList []FactorView

func (l FactorList) String() string {
	if len(l) == 0 {
		return "(none)"
	}
	lines := make([]string, len(l))
	for i, f := range l {
		lines[i] = fmt.Sprintf("#%d %s (%d bits)", f.ID, f.Value, f.Bits)
	}
	return strings.Join(lines, "\n")
}

// StatsView is the output of the stats command.
type StatsView struct {
	Numbers         int64            `json:"numbers"`
	CompleteNumbers int64            `json:"complete_numbers"`
	Factors         int64            `json:"factors"`
	ByPrimality     map[string]int64 `json:"by_primality"`
	ArchivedSplits  int64            `json:"archived_splits"`
}

func statsView(st store.Stats) StatsView {
	v := StatsView{
		Numbers:         st.Numbers,
		CompleteNumbers: st.CompleteNumbers,
		Factors:         st.Factors,
		ByPrimality:     map[string]int64{},
		ArchivedSplits:  st.ArchivedSplits,
	}
	for _, s := range []primality.Status{primality.Unknown, primality.Composite, primality.Probable, primality.Prime} {
		v.ByPrimality[s.String()] = st.ByPrimality[s]
	}
	return v
}

func (v StatsView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "numbers:         %d (%d complete)\n", v.Numbers, v.CompleteNumbers)
	fmt.Fprintf(&b, "factors:         %d\n", v.Factors)

	names := make([]string, 0, len(v.ByPrimality))
	for name := range v.ByPrimality {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-14s %d\n", name+":", v.ByPrimality[name])
	}
	fmt.Fprintf(&b, "archived splits: %d", v.ArchivedSplits)
	return b.String()
}

// MessageView is a one-line acknowledgement.
type MessageView struct {
	Message string `json:"message"`
}

func (v MessageView) String() string { return v.Message }

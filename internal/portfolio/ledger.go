package portfolio

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/order"
)

var (
	ErrNonMonotonicTime = errors.New("non-monotonic time")
	ErrDuplicateAsset   = errors.New("duplicate asset")
	ErrMissingCash      = errors.New("missing cash")
	ErrNonFiniteShares  = errors.New("non-finite shares")
	ErrNegativeCash     = errors.New("negative cash")
	ErrInvalidFill      = errors.New("invalid fill")
)

// HoldingsQuery filters the rows returned by Holdings.
type HoldingsQuery struct {
	// AssetID keeps only the row of that asset when set.
	AssetID *domain.AssetID
	// ExcludeCash drops the cash row.
	ExcludeCash bool
}

type rowSet struct {
	at   time.Time
	rows []domain.Holding
}

// Ledger is the append-only holdings history.
type Ledger struct {
	sets []rowSet
}

// FromCash starts a ledger holding only cash. The amount must be positive.
func FromCash(cash float64, t time.Time) (*Ledger, error) {
	if !(cash > 0) {
		return nil, fmt.Errorf("%w: initial cash must be positive, got %v", ErrNegativeCash, cash)
	}
	return FromMap(map[domain.AssetID]float64{domain.CashID: cash}, t)
}

// FromMap starts a ledger from a share count per asset. It must contain a
// non-negative cash entry.
func FromMap(holdings map[domain.AssetID]float64, t time.Time) (*Ledger, error) {
	t = t.UTC()
	rows := make([]domain.Holding, 0, len(holdings))
	for id, shares := range holdings {
		rows = append(rows, domain.Holding{AsOf: t, AssetID: id, Shares: shares})
	}
	sortRows(rows)

	if err := validate(rows, t); err != nil {
		return nil, err
	}
	if cash := rows[0].Shares; cash < 0 {
		return nil, fmt.Errorf("%w: initial cash %v at %s", ErrNegativeCash, cash, t.Format(time.RFC3339))
	}
	return &Ledger{sets: []rowSet{{at: t, rows: rows}}}, nil
}

// LastTimestamp returns the most recent timestamp.
func (l *Ledger) LastTimestamp() time.Time {
	return l.sets[len(l.sets)-1].at
}

// Timestamps returns every distinct timestamp, ascending.
func (l *Ledger) Timestamps() []time.Time {
	out := make([]time.Time, 0, len(l.sets))
	for _, s := range l.sets {
		if n := len(out); n > 0 && out[n-1].Equal(s.at) {
			continue
		}
		out = append(out, s.at)
	}
	return out
}

// Holdings returns the rows recorded exactly at t, cash first. When several
// row sets share t the latest one wins. An absent t yields an empty result.
func (l *Ledger) Holdings(t time.Time, q HoldingsQuery) []domain.Holding {
	set, ok := l.find(t)
	if !ok {
		return []domain.Holding{}
	}
	out := make([]domain.Holding, 0, len(set.rows))
	for _, r := range set.rows {
		if q.ExcludeCash && r.AssetID.IsCash() {
			continue
		}
		if q.AssetID != nil && r.AssetID != *q.AssetID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Shares returns the latest share count of id, zero if never held.
func (l *Ledger) Shares(id domain.AssetID) float64 {
	for _, r := range l.sets[len(l.sets)-1].rows {
		if r.AssetID == id {
			return r.Shares
		}
	}
	return 0
}

// Advance applies fills on top of the latest row set and appends the result
// at t. It fails without side effects if t is before the last timestamp or
// the resulting row set is invalid.
func (l *Ledger) Advance(t time.Time, fills []order.Fill) error {
	t = t.UTC()
	last := l.LastTimestamp()
	if t.Before(last) {
		return fmt.Errorf("%w: %s is before last timestamp %s",
			ErrNonMonotonicTime, t.Format(time.RFC3339), last.Format(time.RFC3339))
	}

	shares := make(map[domain.AssetID]float64)
	for _, r := range l.sets[len(l.sets)-1].rows {
		shares[r.AssetID] = r.Shares
	}
	for i, f := range fills {
		if f.Order == nil {
			return fmt.Errorf("%w: fill %d has no order", ErrInvalidFill, i)
		}
		if f.Order.AssetID.IsCash() {
			return fmt.Errorf("%w: fill %d trades cash", ErrInvalidFill, i)
		}
		shares[f.Order.AssetID] += f.Shares
		shares[domain.CashID] += f.CashFlow()
	}

	rows := make([]domain.Holding, 0, len(shares))
	for id, s := range shares {
		rows = append(rows, domain.Holding{AsOf: t, AssetID: id, Shares: s})
	}
	sortRows(rows)
	if err := validate(rows, t); err != nil {
		return err
	}
	l.sets = append(l.sets, rowSet{at: t, rows: rows})
	return nil
}

func (l *Ledger) find(t time.Time) (rowSet, bool) {
	// Latest row set at or before t, then an exact match check.
	i := sort.Search(len(l.sets), func(i int) bool { return l.sets[i].at.After(t) }) - 1
	if i < 0 || !l.sets[i].at.Equal(t) {
		return rowSet{}, false
	}
	return l.sets[i], true
}

// sortRows orders rows cash first, then by ascending asset id.
func sortRows(rows []domain.Holding) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].AssetID, rows[j].AssetID
		if a.IsCash() != b.IsCash() {
			return a.IsCash()
		}
		return a < b
	})
}

// validate expects rows sorted by sortRows.
func validate(rows []domain.Holding, t time.Time) error {
	at := t.Format(time.RFC3339)
	if len(rows) == 0 || !rows[0].AssetID.IsCash() {
		return fmt.Errorf("%w: at %s", ErrMissingCash, at)
	}
	for i, r := range rows {
		if i > 0 && rows[i-1].AssetID == r.AssetID {
			return fmt.Errorf("%w: %s at %s", ErrDuplicateAsset, r.AssetID, at)
		}
		if math.IsNaN(r.Shares) || math.IsInf(r.Shares, 0) {
			return fmt.Errorf("%w: %s holds %v at %s", ErrNonFiniteShares, r.AssetID, r.Shares, at)
		}
	}
	return nil
}

// Rows returns every row of every row set in append order.
func (l *Ledger) Rows() []domain.Holding {
	var out []domain.Holding
	for _, s := range l.sets {
		out = append(out, s.rows...)
	}
	return out
}

// Restore rebuilds a ledger from rows as returned by Rows. A row set ends
// when AsOf changes or when an asset repeats, so several row sets recorded
// at the same timestamp come back as separate sets. Each set is validated
// like any other.
func Restore(rows []domain.Holding) (*Ledger, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to restore", ErrMissingCash)
	}
	l := &Ledger{}
	start := 0
	seen := make(map[domain.AssetID]bool)
	for i := 0; i <= len(rows); i++ {
		if i < len(rows) {
			r := rows[i]
			if i == start || (r.AsOf.Equal(rows[start].AsOf) && !seen[r.AssetID]) {
				seen[r.AssetID] = true
				continue
			}
		}
		if err := l.restoreSet(rows[start:i]); err != nil {
			return nil, err
		}
		start = i
		clear(seen)
		if i < len(rows) {
			seen[rows[i].AssetID] = true
		}
	}
	return l, nil
}

func (l *Ledger) restoreSet(rows []domain.Holding) error {
	at := rows[0].AsOf.UTC()
	set := make([]domain.Holding, len(rows))
	for j, r := range rows {
		r.AsOf = at
		set[j] = r
	}
	sortRows(set)
	if err := validate(set, at); err != nil {
		return err
	}
	if n := len(l.sets); n > 0 && at.Before(l.sets[n-1].at) {
		return fmt.Errorf("%w: %s follows %s", ErrNonMonotonicTime,
			at.Format(time.RFC3339), l.sets[n-1].at.Format(time.RFC3339))
	}
	l.sets = append(l.sets, rowSet{at: at, rows: set})
	return nil
}

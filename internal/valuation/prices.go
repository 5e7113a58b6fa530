package valuation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/frames"
)

// StaticPrices is an in-memory price table keyed by exact timestamp.
type StaticPrices struct {
	mu    sync.RWMutex
	table map[int64]map[domain.AssetID]float64
	times map[int64]time.Time
}

// NewStaticPrices creates an empty table.
func NewStaticPrices() *StaticPrices {
	return &StaticPrices{
		table: make(map[int64]map[domain.AssetID]float64),
		times: make(map[int64]time.Time),
	}
}

// Set records the price of id at t, replacing any previous value.
func (s *StaticPrices) Set(t time.Time, id domain.AssetID, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := t.UnixNano()
	row, ok := s.table[k]
	if !ok {
		row = make(map[domain.AssetID]float64)
		s.table[k] = row
		s.times[k] = t.UTC()
	}
	row[id] = price
}

// GetPrices implements domain.PriceSource. Ids without a price at t are
// omitted from the result.
func (s *StaticPrices) GetPrices(_ context.Context, t time.Time, ids []domain.AssetID) ([]domain.Price, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.table[t.UnixNano()]
	out := make([]domain.Price, 0, len(ids))
	for _, id := range ids {
		if p, ok := row[id]; ok {
			out = append(out, domain.Price{AssetID: id, Price: p})
		}
	}
	return out, nil
}

// Timestamps returns every timestamp with at least one price, ascending.
func (s *StaticPrices) Timestamps() []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]time.Time, 0, len(s.times))
	for _, t := range s.times {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// FromFrame builds a table from a bars frame (timestamp, asset_id, close).
func FromFrame(df *dataframe.DataFrame) (*StaticPrices, error) {
	bars, err := frames.Bars(df)
	if err != nil {
		return nil, fmt.Errorf("failed to read prices: %w", err)
	}
	s := NewStaticPrices()
	for _, b := range bars {
		s.Set(b.Timestamp, domain.AssetID(b.AssetID), b.Close)
	}
	return s, nil
}

// LoadCSV reads a bars csv file into a price table.
func LoadCSV(ctx context.Context, path string) (*StaticPrices, error) {
	df, err := frames.LoadBarsCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	return FromFrame(df)
}

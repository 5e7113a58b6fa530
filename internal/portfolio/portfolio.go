package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/frames"
	"github.com/vk/backgrid/internal/order"
	"github.com/vk/backgrid/internal/valuation"
)

// ErrUnknownTimestamp is returned by Snapshot for a timestamp the ledger
// does not contain.
var ErrUnknownTimestamp = errors.New("unknown timestamp")

// Portfolio is a ledger plus a valuator and a snapshot cache.
type Portfolio struct {
	ledger *Ledger
	val    *valuation.Valuator
	snaps  map[int64]domain.Snapshot
}

// New wraps a ledger.
func New(l *Ledger, v *valuation.Valuator) *Portfolio {
	return &Portfolio{ledger: l, val: v, snaps: make(map[int64]domain.Snapshot)}
}

// Ledger returns the underlying ledger.
func (p *Portfolio) Ledger() *Ledger {
	return p.ledger
}

// Advance snapshots the current last timestamp if needed, then advances the
// ledger to t. Neither happens if the snapshot fails.
func (p *Portfolio) Advance(ctx context.Context, t time.Time, fills []order.Fill) error {
	prev := p.ledger.LastTimestamp()
	if _, err := p.Snapshot(ctx, prev); err != nil {
		return fmt.Errorf("failed to snapshot %s before advancing: %w", prev.Format(time.RFC3339), err)
	}
	if err := p.ledger.Advance(t, fills); err != nil {
		return err
	}
	if t.Equal(prev) {
		delete(p.snaps, t.UnixNano())
	}
	ctxlog.FromContext(ctx).Debug("Portfolio advanced.", "from", prev, "to", t, "fills", len(fills))
	return nil
}

// Snapshot returns the memoized statistics at t, computing them on first use.
func (p *Portfolio) Snapshot(ctx context.Context, t time.Time) (domain.Snapshot, error) {
	if s, ok := p.snaps[t.UnixNano()]; ok {
		return s, nil
	}
	rows := p.ledger.Holdings(t, HoldingsQuery{})
	if len(rows) == 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownTimestamp, t.Format(time.RFC3339))
	}
	s, err := p.val.Snapshot(ctx, t.UTC(), rows)
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.snaps[t.UnixNano()] = s
	return s, nil
}

// Snapshots returns every cached snapshot ordered by timestamp.
func (p *Portfolio) Snapshots() []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(p.snaps))
	for _, s := range p.snaps {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// HoldingsFrame builds a (timestamp, asset_id, shares) table from rows.
func HoldingsFrame(rows []domain.Holding) *dataframe.DataFrame {
	out := make([]frames.Row, len(rows))
	for i, r := range rows {
		out[i] = frames.Row{Timestamp: r.AsOf, AssetID: int64(r.AssetID), Value: r.Shares}
	}
	return frames.NewRows(frames.Shares, out)
}

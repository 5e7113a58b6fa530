package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/domain"
)

// ErrUnmergeableOrders is returned by Process when more than one order for
// the same asset remains after merging.
var ErrUnmergeableOrders = errors.New("unmergeable orders due at the same time")

// Processor turns pending orders into fills as simulated time advances.
// It is not safe for concurrent use.
type Processor struct {
	src     domain.PriceSource
	pending []Order
	fills   []Fill
}

// NewProcessor creates a processor pricing fills from src.
func NewProcessor(src domain.PriceSource) *Processor {
	return &Processor{src: src}
}

// Submit validates and queues an order.
func (p *Processor) Submit(o Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	p.pending = append(p.pending, o)
	return nil
}

// Pending returns a copy of the queued orders.
func (p *Processor) Pending() []Order {
	return append([]Order(nil), p.pending...)
}

// Fills returns every fill emitted so far, for audit.
func (p *Processor) Fills() []Fill {
	return append([]Fill(nil), p.fills...)
}

// Process executes every pending order whose window has ended by now.
// Orders for the same asset are merged; if more than one remains for an
// asset the call fails with ErrUnmergeableOrders. Merged orders with zero net
// quantity produce no fill. On error nothing is consumed.
func (p *Processor) Process(ctx context.Context, now time.Time) ([]Fill, error) {
	logger := ctxlog.FromContext(ctx)

	var due, keep []Order
	for _, o := range p.pending {
		if o.End.After(now) {
			keep = append(keep, o)
		} else {
			due = append(due, o)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}

	merged, err := mergeByAsset(due)
	if err != nil {
		return nil, err
	}

	fills := make([]Fill, 0, len(merged))
	for i := range merged {
		o := merged[i]
		if o.Quantity == 0 {
			logger.Debug("Orders netted to zero.", "asset", o.AssetID, "at", now)
			continue
		}
		price, err := o.ExecutionPrice(ctx, p.src)
		if err != nil {
			return nil, fmt.Errorf("pricing order for %s: %w", o.AssetID, err)
		}
		f, err := NewFill(now, o.Quantity, price, &o)
		if err != nil {
			return nil, fmt.Errorf("filling order for %s: %w", o.AssetID, err)
		}
		fills = append(fills, f)
	}

	p.pending = keep
	p.fills = append(p.fills, fills...)
	logger.Debug("Orders processed.", "at", now, "due", len(due), "fills", len(fills), "pending", len(keep))
	return fills, nil
}

// mergeByAsset merges orders per asset, keeping first-seen asset order.
func mergeByAsset(orders []Order) ([]Order, error) {
	var out []Order
	index := make(map[domain.AssetID]int)
	for _, o := range orders {
		i, ok := index[o.AssetID]
		if !ok {
			index[o.AssetID] = len(out)
			out = append(out, o)
			continue
		}
		m, err := out[i].Merge(o)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnmergeableOrders, err)
		}
		out[i] = m
	}
	return out, nil
}

package valuation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/domain"
)

var (
	// ErrMissingPrice is returned when the source does not price every
	// requested non-cash asset.
	ErrMissingPrice = domain.ErrMissingPrice
	// ErrNonFinite is returned when a snapshot statistic is NaN or infinite.
	ErrNonFinite = errors.New("non-finite valuation")
	// ErrNoCash is returned when a row set passed to Snapshot has no cash row.
	ErrNoCash = errors.New("no cash row")
)

// CashPrice is the fixed unit price of cash.
const CashPrice = 1.0

// Valuator prices holdings through a price source.
type Valuator struct {
	src domain.PriceSource
}

// New creates a valuator backed by src.
func New(src domain.PriceSource) *Valuator {
	return &Valuator{src: src}
}

// PriceAt returns one price per requested id at t. Cash is priced at
// CashPrice without consulting the source.
func (v *Valuator) PriceAt(ctx context.Context, t time.Time, ids []domain.AssetID) (map[domain.AssetID]float64, error) {
	out := make(map[domain.AssetID]float64, len(ids))
	want := make(map[domain.AssetID]struct{}, len(ids))
	var query []domain.AssetID
	for _, id := range ids {
		if id.IsCash() {
			out[id] = CashPrice
			continue
		}
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		query = append(query, id)
	}
	if len(query) == 0 {
		return out, nil
	}

	prices, err := v.src.GetPrices(ctx, t, query)
	if err != nil {
		return nil, fmt.Errorf("price source failed at %s: %w", t.Format(time.RFC3339), err)
	}
	for _, p := range prices {
		if _, ok := want[p.AssetID]; ok {
			out[p.AssetID] = p.Price
		}
	}

	var missing []domain.AssetID
	for _, id := range query {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, fmt.Errorf("%w: %d of %d assets unpriced at %s: %v",
			ErrMissingPrice, len(missing), len(query), t.Format(time.RFC3339), missing)
	}
	return out, nil
}

// MarkToMarket values each row at t. An empty input yields an empty result.
func (v *Valuator) MarkToMarket(ctx context.Context, t time.Time, rows []domain.Holding) ([]domain.Valued, error) {
	if len(rows) == 0 {
		return []domain.Valued{}, nil
	}
	ids := make([]domain.AssetID, len(rows))
	for i, r := range rows {
		ids[i] = r.AssetID
	}
	prices, err := v.PriceAt(ctx, t, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Valued, len(rows))
	for i, r := range rows {
		p := prices[r.AssetID]
		out[i] = domain.Valued{Holding: r, Price: p, Value: r.Shares * p}
	}
	return out, nil
}

// Snapshot computes portfolio statistics for the row set at t.
// Leverage is gross exposure over net wealth and is left as computed, so a
// zero net wealth yields an infinite or NaN leverage.
func (v *Valuator) Snapshot(ctx context.Context, t time.Time, rows []domain.Holding) (domain.Snapshot, error) {
	var (
		positions []domain.Holding
		cash      float64
		hasCash   bool
	)
	for _, r := range rows {
		if r.AssetID.IsCash() {
			cash, hasCash = r.Shares, true
			continue
		}
		positions = append(positions, r)
	}
	if !hasCash {
		return domain.Snapshot{}, fmt.Errorf("%w: at %s", ErrNoCash, t.Format(time.RFC3339))
	}

	valued, err := v.MarkToMarket(ctx, t, positions)
	if err != nil {
		return domain.Snapshot{}, err
	}
	values := make([]float64, len(valued))
	exposure := make([]float64, len(valued))
	for i, vr := range valued {
		values[i] = vr.Value
		exposure[i] = math.Abs(vr.Value)
	}

	nav := floats.Sum(values)
	if err := finite("net asset value", nav, t); err != nil {
		return domain.Snapshot{}, err
	}
	if err := finite("cash", cash, t); err != nil {
		return domain.Snapshot{}, err
	}
	wealth := nav + cash
	if err := finite("net wealth", wealth, t); err != nil {
		return domain.Snapshot{}, err
	}
	gross := floats.Sum(exposure)

	snap := domain.Snapshot{
		Timestamp:     t,
		NetAssetValue: nav,
		Cash:          cash,
		NetWealth:     wealth,
		GrossExposure: gross,
		Leverage:      gross / wealth,
	}
	ctxlog.FromContext(ctx).Debug("Snapshot computed.",
		"at", t, "nav", nav, "cash", cash, "wealth", wealth, "gross", gross, "positions", len(positions))
	return snap, nil
}

func finite(name string, x float64, t time.Time) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%w: %s is %v at %s", ErrNonFinite, name, x, t.Format(time.RFC3339))
	}
	return nil
}

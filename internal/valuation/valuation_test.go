package valuation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/backgrid/internal/domain"
)

var (
	t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	t1 = t0.Add(24 * time.Hour)
)

// countingSource records the ids it was asked for.
type countingSource struct {
	inner *StaticPrices
	asked [][]domain.AssetID
	err   error
}

func (c *countingSource) GetPrices(ctx context.Context, t time.Time, ids []domain.AssetID) ([]domain.Price, error) {
	c.asked = append(c.asked, append([]domain.AssetID(nil), ids...))
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.GetPrices(ctx, t, ids)
}

func TestPriceAt(t *testing.T) {
	ctx := context.Background()
	prices := NewStaticPrices()
	prices.Set(t1, 7, 5)
	prices.Set(t1, 8, 2)

	t.Run("cash is priced locally", func(t *testing.T) {
		src := &countingSource{inner: prices}
		got, err := New(src).PriceAt(ctx, t1, []domain.AssetID{domain.CashID, 7})
		require.NoError(t, err)
		assert.Equal(t, map[domain.AssetID]float64{domain.CashID: 1, 7: 5}, got)
		require.Len(t, src.asked, 1)
		assert.Equal(t, []domain.AssetID{7}, src.asked[0])
	})

	t.Run("cash only never hits the source", func(t *testing.T) {
		src := &countingSource{inner: prices}
		got, err := New(src).PriceAt(ctx, t1, []domain.AssetID{domain.CashID})
		require.NoError(t, err)
		assert.Equal(t, 1.0, got[domain.CashID])
		assert.Empty(t, src.asked)
	})

	t.Run("missing price", func(t *testing.T) {
		_, err := New(prices).PriceAt(ctx, t1, []domain.AssetID{7, 9})
		assert.ErrorIs(t, err, ErrMissingPrice)
		assert.Contains(t, err.Error(), "asset(9)")
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := New(&countingSource{inner: prices, err: boom}).PriceAt(ctx, t1, []domain.AssetID{7})
		assert.ErrorIs(t, err, boom)
	})
}

func TestMarkToMarket(t *testing.T) {
	ctx := context.Background()
	prices := NewStaticPrices()
	prices.Set(t1, 7, 5)

	got, err := New(prices).MarkToMarket(ctx, t1, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = New(prices).MarkToMarket(ctx, t1, []domain.Holding{
		{AsOf: t1, AssetID: domain.CashID, Shares: 50},
		{AsOf: t1, AssetID: 7, Shares: -10},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 50.0, got[0].Value)
	assert.Equal(t, 5.0, got[1].Price)
	assert.Equal(t, -50.0, got[1].Value)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	prices := NewStaticPrices()
	prices.Set(t1, 7, 5)
	prices.Set(t1, 8, 4)
	v := New(prices)

	t.Run("round trip example", func(t *testing.T) {
		snap, err := v.Snapshot(ctx, t1, []domain.Holding{
			{AsOf: t1, AssetID: domain.CashID, Shares: 50},
			{AsOf: t1, AssetID: 7, Shares: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Snapshot{
			Timestamp:     t1,
			NetAssetValue: 50,
			Cash:          50,
			NetWealth:     100,
			GrossExposure: 50,
			Leverage:      0.5,
		}, snap)
	})

	t.Run("short positions add to gross exposure", func(t *testing.T) {
		snap, err := v.Snapshot(ctx, t1, []domain.Holding{
			{AsOf: t1, AssetID: domain.CashID, Shares: 100},
			{AsOf: t1, AssetID: 7, Shares: 10},
			{AsOf: t1, AssetID: 8, Shares: -5},
		})
		require.NoError(t, err)
		assert.Equal(t, 30.0, snap.NetAssetValue)
		assert.Equal(t, 70.0, snap.GrossExposure)
		assert.InDelta(t, 70.0/130.0, snap.Leverage, 1e-12)
	})

	t.Run("cash only", func(t *testing.T) {
		snap, err := v.Snapshot(ctx, t0, []domain.Holding{{AsOf: t0, AssetID: domain.CashID, Shares: 100}})
		require.NoError(t, err)
		assert.Equal(t, 100.0, snap.NetWealth)
		assert.Zero(t, snap.Leverage)
	})

	t.Run("non-finite", func(t *testing.T) {
		_, err := v.Snapshot(ctx, t1, []domain.Holding{{AsOf: t1, AssetID: domain.CashID, Shares: math.Inf(1)}})
		assert.ErrorIs(t, err, ErrNonFinite)
	})

	t.Run("no cash", func(t *testing.T) {
		_, err := v.Snapshot(ctx, t1, []domain.Holding{{AsOf: t1, AssetID: 7, Shares: 1}})
		assert.ErrorIs(t, err, ErrNoCash)
	})

	t.Run("missing price", func(t *testing.T) {
		_, err := v.Snapshot(ctx, t0, []domain.Holding{
			{AsOf: t0, AssetID: domain.CashID, Shares: 1},
			{AsOf: t0, AssetID: 7, Shares: 1},
		})
		assert.ErrorIs(t, err, ErrMissingPrice)
	})
}

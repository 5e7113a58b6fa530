package valuation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/frames"
	"github.com/vk/backgrid/internal/testutil"
)

func TestStaticPrices(t *testing.T) {
	ctx := context.Background()
	s := NewStaticPrices()
	s.Set(t1, 7, 5)
	s.Set(t0, 7, 4)
	s.Set(t1.In(time.FixedZone("X", 3600)), 8, 2)

	got, err := s.GetPrices(ctx, t1, []domain.AssetID{7, 8, 9})
	require.NoError(t, err)
	assert.Equal(t, []domain.Price{{AssetID: 7, Price: 5}, {AssetID: 8, Price: 2}}, got)
	assert.Equal(t, []time.Time{t0, t1}, s.Timestamps())
}

func TestFromFrame(t *testing.T) {
	df := frames.NewBars([]frames.Bar{
		{Timestamp: t0, AssetID: 7, Close: 4},
		{Timestamp: t1, AssetID: 7, Close: 5},
	})
	s, err := FromFrame(df)
	require.NoError(t, err)

	got, err := s.GetPrices(context.Background(), t0, []domain.AssetID{7})
	require.NoError(t, err)
	assert.Equal(t, []domain.Price{{AssetID: 7, Price: 4}}, got)

	_, err = FromFrame(frames.NewRows(frames.Target, nil))
	assert.ErrorIs(t, err, frames.ErrMissingColumn)
}

func TestLoadCSV(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"prices.csv": `
			timestamp,asset_id,close
			2024-01-02T00:00:00Z,7,4
			2024-01-03T00:00:00Z,7,5
		`,
	})
	s, err := LoadCSV(context.Background(), filepath.Join(dir, "prices.csv"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t0, t1}, s.Timestamps())
}

func TestStatsFrame(t *testing.T) {
	df := StatsFrame([]domain.Snapshot{
		{Timestamp: t0, Cash: 100, NetWealth: 100},
		{Timestamp: t1, NetAssetValue: 50, Cash: 50, NetWealth: 100, GrossExposure: 50, Leverage: 0.5},
	})
	assert.Equal(t, 2, df.NRows())

	lev, err := frames.Float64s(df, ColLeverage)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5}, lev)
	ts, err := frames.Times(df, frames.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t0, t1}, ts)
}

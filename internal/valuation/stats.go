package valuation

import (
	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/frames"
)

// Statistics column names.
const (
	ColNetAssetValue = "net_asset_value"
	ColCash          = "cash"
	ColNetWealth     = "net_wealth"
	ColGrossExposure = "gross_exposure"
	ColLeverage      = "leverage"
)

// StatsFrame exports snapshots as a table, one row per snapshot.
func StatsFrame(snaps []domain.Snapshot) *dataframe.DataFrame {
	n := len(snaps)
	ts := make([]interface{}, n)
	cols := [5][]interface{}{}
	for i := range cols {
		cols[i] = make([]interface{}, n)
	}
	for i, s := range snaps {
		ts[i] = s.Timestamp.UTC()
		cols[0][i] = s.NetAssetValue
		cols[1][i] = s.Cash
		cols[2][i] = s.NetWealth
		cols[3][i] = s.GrossExposure
		cols[4][i] = s.Leverage
	}
	init := &dataframe.SeriesInit{Capacity: n}
	return dataframe.NewDataFrame(
		dataframe.NewSeriesTime(frames.Timestamp, init, ts...),
		dataframe.NewSeriesFloat64(ColNetAssetValue, init, cols[0]...),
		dataframe.NewSeriesFloat64(ColCash, init, cols[1]...),
		dataframe.NewSeriesFloat64(ColNetWealth, init, cols[2]...),
		dataframe.NewSeriesFloat64(ColGrossExposure, init, cols[3]...),
		dataframe.NewSeriesFloat64(ColLeverage, init, cols[4]...),
	)
}

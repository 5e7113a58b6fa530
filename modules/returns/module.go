// Package returns provides the "returns" node kind: per-asset simple returns
// over a fixed number of periods, computed from a bars table.
package returns

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/frames"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Compute returns close[t]/close[t-periods]-1 for every asset, ordered by
// timestamp then asset id. The first periods observations of each asset
// produce no row.
func Compute(bars []frames.Bar, periods int) ([]frames.Row, error) {
	if periods < 1 {
		return nil, fmt.Errorf("periods must be at least 1, got %d", periods)
	}

	byAsset := make(map[int64][]frames.Bar)
	for _, b := range bars {
		byAsset[b.AssetID] = append(byAsset[b.AssetID], b)
	}

	var out []frames.Row
	for id, series := range byAsset {
		sort.SliceStable(series, func(i, j int) bool { return series[i].Timestamp.Before(series[j].Timestamp) })
		for i := periods; i < len(series); i++ {
			prev := series[i-periods].Close
			if prev == 0 {
				return nil, fmt.Errorf("asset %d has a zero close at %s", id, series[i-periods].Timestamp)
			}
			out = append(out, frames.Row{
				Timestamp: series[i].Timestamp,
				AssetID:   id,
				Value:     series[i].Close/prev - 1,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].AssetID < out[j].AssetID
	})
	return out, nil
}

func kernel(periods int) node.KernelFunc {
	return func(_ context.Context, in node.Values) (node.Values, error) {
		df, err := frames.From(in["bars"])
		if err != nil {
			return nil, err
		}
		bars, err := frames.Bars(df)
		if err != nil {
			return nil, err
		}
		rows, err := Compute(bars, periods)
		if err != nil {
			return nil, err
		}
		return node.Values{"returns": frames.NewRows(frames.Return, rows)}, nil
	}
}

// Register registers the kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Kind{
		Name:     "returns",
		Inputs:   []string{"bars"},
		Outputs:  []string{"returns"},
		Defaults: config.Config{"periods": int64(1)},
		New: func(params config.Config) (node.Kernel, error) {
			periods, err := params.Int("periods")
			if err != nil {
				return nil, fmt.Errorf("returns: %w", err)
			}
			if periods < 1 {
				return nil, fmt.Errorf("returns: periods must be at least 1, got %d", periods)
			}
			return kernel(int(periods)), nil
		},
	})
}

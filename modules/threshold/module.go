// Package threshold provides the "threshold" node kind, a toy signal that
// turns returns into share targets: hold a fixed number of shares while the
// latest return is above a threshold, otherwise stay flat.
//
// With calibrate = true, Fit replaces the threshold with the mean of the
// returns it sees.
package threshold

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/frames"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kernel holds the (possibly fitted) threshold.
type Kernel struct {
	shares    float64
	calibrate bool

	mu        sync.Mutex
	threshold float64
}

// Threshold returns the current threshold.
func (k *Kernel) Threshold() float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.threshold
}

func readReturns(in node.Values) ([]frames.Row, error) {
	df, err := frames.From(in["returns"])
	if err != nil {
		return nil, err
	}
	return frames.Rows(df, frames.Return)
}

// Fit implements node.Fitter.
func (k *Kernel) Fit(ctx context.Context, in node.Values) (node.Values, error) {
	rows, err := readReturns(in)
	if err != nil {
		return nil, err
	}
	if k.calibrate && len(rows) > 0 {
		xs := make([]float64, len(rows))
		for i, r := range rows {
			xs[i] = r.Value
		}
		k.mu.Lock()
		k.threshold = stat.Mean(xs, nil)
		k.mu.Unlock()
		ctxlog.FromContext(ctx).Debug("Threshold calibrated.", "threshold", k.Threshold(), "samples", len(xs))
	}
	return k.targets(rows), nil
}

// Predict implements node.Predictor.
func (k *Kernel) Predict(_ context.Context, in node.Values) (node.Values, error) {
	rows, err := readReturns(in)
	if err != nil {
		return nil, err
	}
	return k.targets(rows), nil
}

func (k *Kernel) targets(rows []frames.Row) node.Values {
	th := k.Threshold()
	out := make([]frames.Row, len(rows))
	for i, r := range rows {
		target := 0.0
		if r.Value > th {
			target = k.shares
		}
		out[i] = frames.Row{Timestamp: r.Timestamp, AssetID: r.AssetID, Value: target}
	}
	return node.Values{"targets": frames.NewRows(frames.Target, out)}
}

// Register registers the kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Kind{
		Name:     "threshold",
		Inputs:   []string{"returns"},
		Outputs:  []string{"targets"},
		Defaults: config.Config{"threshold": 0.0, "shares": 10.0, "calibrate": false},
		New: func(params config.Config) (node.Kernel, error) {
			th, err := params.Float("threshold")
			if err != nil {
				return nil, fmt.Errorf("threshold: %w", err)
			}
			shares, err := params.Float("shares")
			if err != nil {
				return nil, fmt.Errorf("threshold: %w", err)
			}
			calibrate, err := params.Bool("calibrate")
			if err != nil {
				return nil, fmt.Errorf("threshold: %w", err)
			}
			return &Kernel{threshold: th, shares: shares, calibrate: calibrate}, nil
		},
	})
}

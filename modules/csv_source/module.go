// Package csv_source provides the "csv_source" node kind, which loads a bars
// table (timestamp, asset_id, close) from a csv file.
package csv_source

import (
	"context"
	"fmt"
	"sync"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/frames"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kernel loads the file once and serves the same table to Fit and Predict.
type Kernel struct {
	path string

	once sync.Once
	df   *dataframe.DataFrame
	err  error
}

func (k *Kernel) load(ctx context.Context) (node.Values, error) {
	k.once.Do(func() {
		k.df, k.err = frames.LoadBarsCSV(ctx, k.path)
		if k.err == nil {
			ctxlog.FromContext(ctx).Debug("Loaded bars.", "path", k.path, "rows", k.df.NRows())
		}
	})
	if k.err != nil {
		return nil, k.err
	}
	return node.Values{"bars": k.df}, nil
}

// Fit implements node.Fitter.
func (k *Kernel) Fit(ctx context.Context, _ node.Values) (node.Values, error) {
	return k.load(ctx)
}

// Predict implements node.Predictor.
func (k *Kernel) Predict(ctx context.Context, _ node.Values) (node.Values, error) {
	return k.load(ctx)
}

// Register registers the kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Kind{
		Name:    "csv_source",
		Outputs: []string{"bars"},
		New: func(params config.Config) (node.Kernel, error) {
			path, err := params.String("path")
			if err != nil {
				return nil, fmt.Errorf("csv_source: %w", err)
			}
			return &Kernel{path: path}, nil
		},
	})
}

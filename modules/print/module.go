// Package print provides the "print" node kind, a sink that writes the table
// it receives to an output stream during Predict.
package print

import (
	"context"
	"fmt"
	"io"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
// Out defaults to os.Stdout.
type Module struct {
	Out io.Writer
}

// Kernel prints its "value" input.
type Kernel struct {
	out   io.Writer
	title string
}

// Fit is a no-op so print nodes can sit in pipelines that are fitted.
func (k *Kernel) Fit(context.Context, node.Values) (node.Values, error) {
	return node.Values{}, nil
}

// Predict implements node.Predictor.
func (k *Kernel) Predict(ctx context.Context, in node.Values) (node.Values, error) {
	ctxlog.FromContext(ctx).Info("Printing input", "title", k.title)

	if k.title != "" {
		fmt.Fprintf(k.out, "== %s ==\n", k.title)
	}
	switch v := in["value"].(type) {
	case nil:
		fmt.Fprintln(k.out, "      (null)")
	case *dataframe.DataFrame:
		fmt.Fprintln(k.out, v.Table())
	default:
		fmt.Fprintf(k.out, "      %v\n", v)
	}
	return node.Values{}, nil
}

// Register registers the kind with the registry.
func (m *Module) Register(r *registry.Registry) {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	r.Register(&registry.Kind{
		Name:     "print",
		Inputs:   []string{"value"},
		Defaults: config.Config{"title": ""},
		New: func(params config.Config) (node.Kernel, error) {
			title, err := params.String("title")
			if err != nil {
				return nil, fmt.Errorf("print: %w", err)
			}
			return &Kernel{out: out, title: title}, nil
		},
	})
}

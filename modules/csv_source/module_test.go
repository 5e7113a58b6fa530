package csv_source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/frames"
	"github.com/vk/backgrid/internal/registry"
	"github.com/vk/backgrid/internal/testutil"
)

func TestCSVSource(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"prices.csv": `
			timestamp,asset_id,close
			2024-01-02T00:00:00Z,7,5
			2024-01-03T00:00:00Z,7,6
		`,
	})
	k, err := registry.New().Use(&Module{}).Kind("csv_source")
	require.NoError(t, err)

	kern, err := k.New(config.Config{"path": filepath.Join(dir, "prices.csv")})
	require.NoError(t, err)
	src := kern.(*Kernel)

	fitted, err := src.Fit(context.Background(), nil)
	require.NoError(t, err)
	predicted, err := src.Predict(context.Background(), nil)
	require.NoError(t, err)
	assert.Same(t, fitted["bars"], predicted["bars"], "file is read once")

	df, err := frames.From(predicted["bars"])
	require.NoError(t, err)
	bars, err := frames.Bars(df)
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Equal(t, 6.0, bars[1].Close)
}

func TestCSVSource_Errors(t *testing.T) {
	k, err := registry.New().Use(&Module{}).Kind("csv_source")
	require.NoError(t, err)

	_, err = k.New(config.Config{})
	assert.ErrorIs(t, err, config.ErrMissingKey)

	kern, err := k.New(config.Config{"path": filepath.Join(t.TempDir(), "absent.csv")})
	require.NoError(t, err)
	_, err = kern.(*Kernel).Predict(context.Background(), nil)
	assert.Error(t, err)
}

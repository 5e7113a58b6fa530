package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// Column names.
const (
	Timestamp = "timestamp"
	AssetID   = "asset_id"
	Close     = "close"
	Return    = "return"
	Target    = "target"
	Shares    = "shares"
)

var (
	// ErrMissingColumn is returned when a table lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadCell is returned for nil cells or cells of an unexpected type.
	ErrBadCell = errors.New("bad cell")
	// ErrNotFrame is returned when a node value is not a dataframe.
	ErrNotFrame = errors.New("value is not a dataframe")
)

// Bar is one closing price observation.
type Bar struct {
	Timestamp time.Time
	AssetID   int64
	Close     float64
}

// Row is a generic (timestamp, asset, value) observation, used for returns
// and targets.
type Row struct {
	Timestamp time.Time
	AssetID   int64
	Value     float64
}

// From asserts that a node value holds a dataframe.
func From(v any) (*dataframe.DataFrame, error) {
	df, ok := v.(*dataframe.DataFrame)
	if !ok || df == nil {
		return nil, fmt.Errorf("%w: got %T", ErrNotFrame, v)
	}
	return df, nil
}

// Column returns the named series.
func Column(df *dataframe.DataFrame, name string) (dataframe.Series, error) {
	idx, err := df.NameToColumn(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return df.Series[idx], nil
}

// Times reads a time column.
func Times(df *dataframe.DataFrame, name string) ([]time.Time, error) {
	s, err := Column(df, name)
	if err != nil {
		return nil, err
	}
	n := s.NRows()
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		v, ok := s.Value(i).(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w: %s row %d is %T, want time", ErrBadCell, name, i, s.Value(i))
		}
		out[i] = v.UTC()
	}
	return out, nil
}

// Int64s reads an integer column.
func Int64s(df *dataframe.DataFrame, name string) ([]int64, error) {
	s, err := Column(df, name)
	if err != nil {
		return nil, err
	}
	n := s.NRows()
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		v, ok := s.Value(i).(int64)
		if !ok {
			return nil, fmt.Errorf("%w: %s row %d is %T, want int64", ErrBadCell, name, i, s.Value(i))
		}
		out[i] = v
	}
	return out, nil
}

// Float64s reads a float column. NaN cells are reported as bad cells since
// dataframe-go stores them as nil.
func Float64s(df *dataframe.DataFrame, name string) ([]float64, error) {
	s, err := Column(df, name)
	if err != nil {
		return nil, err
	}
	n := s.NRows()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		switch v := s.Value(i).(type) {
		case float64:
			out[i] = v
		case int64:
			out[i] = float64(v)
		default:
			return nil, fmt.Errorf("%w: %s row %d is %T, want float64", ErrBadCell, name, i, v)
		}
	}
	return out, nil
}

// NewBars builds a bars table.
func NewBars(bars []Bar) *dataframe.DataFrame {
	ts := make([]interface{}, len(bars))
	ids := make([]interface{}, len(bars))
	closes := make([]interface{}, len(bars))
	for i, b := range bars {
		ts[i] = b.Timestamp.UTC()
		ids[i] = b.AssetID
		closes[i] = b.Close
	}
	return dataframe.NewDataFrame(
		dataframe.NewSeriesTime(Timestamp, &dataframe.SeriesInit{Capacity: len(bars)}, ts...),
		dataframe.NewSeriesInt64(AssetID, &dataframe.SeriesInit{Capacity: len(bars)}, ids...),
		dataframe.NewSeriesFloat64(Close, &dataframe.SeriesInit{Capacity: len(bars)}, closes...),
	)
}

// Bars reads a bars table.
func Bars(df *dataframe.DataFrame) ([]Bar, error) {
	rows, err := Rows(df, Close)
	if err != nil {
		return nil, err
	}
	out := make([]Bar, len(rows))
	for i, r := range rows {
		out[i] = Bar{Timestamp: r.Timestamp, AssetID: r.AssetID, Close: r.Value}
	}
	return out, nil
}

// NewRows builds a (timestamp, asset_id, valueCol) table.
func NewRows(valueCol string, rows []Row) *dataframe.DataFrame {
	ts := make([]interface{}, len(rows))
	ids := make([]interface{}, len(rows))
	vals := make([]interface{}, len(rows))
	for i, r := range rows {
		ts[i] = r.Timestamp.UTC()
		ids[i] = r.AssetID
		vals[i] = r.Value
	}
	return dataframe.NewDataFrame(
		dataframe.NewSeriesTime(Timestamp, &dataframe.SeriesInit{Capacity: len(rows)}, ts...),
		dataframe.NewSeriesInt64(AssetID, &dataframe.SeriesInit{Capacity: len(rows)}, ids...),
		dataframe.NewSeriesFloat64(valueCol, &dataframe.SeriesInit{Capacity: len(rows)}, vals...),
	)
}

// Rows reads a (timestamp, asset_id, valueCol) table.
func Rows(df *dataframe.DataFrame, valueCol string) ([]Row, error) {
	ts, err := Times(df, Timestamp)
	if err != nil {
		return nil, err
	}
	ids, err := Int64s(df, AssetID)
	if err != nil {
		return nil, err
	}
	vals, err := Float64s(df, valueCol)
	if err != nil {
		return nil, err
	}
	out := make([]Row, len(ts))
	for i := range ts {
		out[i] = Row{Timestamp: ts[i], AssetID: ids[i], Value: vals[i]}
	}
	return out, nil
}

// LoadBarsCSV reads a bars table from a csv file with a header row of
// timestamp (RFC 3339), asset_id and close.
func LoadBarsCSV(ctx context.Context, path string) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bars file %q: %w", path, err)
	}
	defer f.Close()

	df, err := imports.LoadFromCSV(ctx, f, imports.CSVLoadOptions{
		TrimLeadingSpace: true,
		DictateDataType: map[string]interface{}{
			Timestamp: time.Time{},
			AssetID:   int64(0),
			Close:     float64(0),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse bars file %q: %w", path, err)
	}
	for _, col := range []string{Timestamp, AssetID, Close} {
		if _, err := Column(df, col); err != nil {
			return nil, fmt.Errorf("bars file %q: %w", path, err)
		}
	}
	return df, nil
}

package portfoliolog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/backgrid/internal/domain"
	"github.com/vk/backgrid/internal/order"
	"github.com/vk/backgrid/internal/portfolio"
)

// File names inside a log directory.
const (
	MetaFile     = "meta.msgpack"
	HoldingsFile = "holdings.msgpack"
	StatsFile    = "stats.msgpack"
	FillsFile    = "fills.msgpack"
)

// ErrCorruptLog is returned when a log file cannot be decoded.
var ErrCorruptLog = errors.New("corrupt portfolio log")

// Meta describes the run that produced a log.
type Meta struct {
	RunID       string
	CreatedAt   time.Time
	InitialCash float64
	Pipeline    string
}

// FillRecord is the persisted form of an order.Fill.
type FillRecord struct {
	Timestamp time.Time
	AssetID   domain.AssetID
	Shares    float64
	Price     float64
}

// Log is everything persisted for one run.
type Log struct {
	Meta     Meta
	Holdings []domain.Holding
	Stats    []domain.Snapshot
	Fills    []FillRecord
}

// FillRecords converts fills for persistence.
func FillRecords(fills []order.Fill) []FillRecord {
	out := make([]FillRecord, 0, len(fills))
	for _, f := range fills {
		var id domain.AssetID
		if f.Order != nil {
			id = f.Order.AssetID
		}
		out = append(out, FillRecord{Timestamp: f.Timestamp, AssetID: id, Shares: f.Shares, Price: f.Price})
	}
	return out
}

type metaRecord struct {
	RunID       string  `msgpack:"run_id"`
	CreatedAt   int64   `msgpack:"created_at"`
	InitialCash float64 `msgpack:"initial_cash"`
	Pipeline    string  `msgpack:"pipeline"`
}

type holdingRecord struct {
	Timestamp int64   `msgpack:"timestamp"`
	AssetID   int64   `msgpack:"asset_id"`
	Shares    float64 `msgpack:"shares"`
}

type statsRecord struct {
	Timestamp     int64   `msgpack:"timestamp"`
	NetAssetValue float64 `msgpack:"net_asset_value"`
	Cash          float64 `msgpack:"cash"`
	NetWealth     float64 `msgpack:"net_wealth"`
	GrossExposure float64 `msgpack:"gross_exposure"`
	Leverage      float64 `msgpack:"leverage"`
}

type fillRecord struct {
	Timestamp int64   `msgpack:"timestamp"`
	AssetID   int64   `msgpack:"asset_id"`
	Shares    float64 `msgpack:"shares"`
	Price     float64 `msgpack:"price"`
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Write stores the log under dir, creating it if needed.
func Write(dir string, l *Log) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}

	meta := metaRecord{
		RunID:       l.Meta.RunID,
		CreatedAt:   l.Meta.CreatedAt.UnixNano(),
		InitialCash: l.Meta.InitialCash,
		Pipeline:    l.Meta.Pipeline,
	}
	holdings := make([]holdingRecord, len(l.Holdings))
	for i, h := range l.Holdings {
		holdings[i] = holdingRecord{Timestamp: h.AsOf.UnixNano(), AssetID: int64(h.AssetID), Shares: h.Shares}
	}
	stats := make([]statsRecord, len(l.Stats))
	for i, s := range l.Stats {
		stats[i] = statsRecord{
			Timestamp:     s.Timestamp.UnixNano(),
			NetAssetValue: s.NetAssetValue,
			Cash:          s.Cash,
			NetWealth:     s.NetWealth,
			GrossExposure: s.GrossExposure,
			Leverage:      s.Leverage,
		}
	}
	fills := make([]fillRecord, len(l.Fills))
	for i, f := range l.Fills {
		fills[i] = fillRecord{Timestamp: f.Timestamp.UnixNano(), AssetID: int64(f.AssetID), Shares: f.Shares, Price: f.Price}
	}

	for name, v := range map[string]any{
		MetaFile:     meta,
		HoldingsFile: holdings,
		StatsFile:    stats,
		FillsFile:    fills,
	} {
		if err := writeFile(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}
	return nil
}

// Read loads a log written by Write.
func Read(dir string) (*Log, error) {
	var (
		meta     metaRecord
		holdings []holdingRecord
		stats    []statsRecord
		fills    []fillRecord
	)
	for name, v := range map[string]any{
		MetaFile:     &meta,
		HoldingsFile: &holdings,
		StatsFile:    &stats,
		FillsFile:    &fills,
	} {
		if err := readFile(filepath.Join(dir, name), v); err != nil {
			return nil, err
		}
	}

	l := &Log{
		Meta: Meta{
			RunID:       meta.RunID,
			CreatedAt:   fromNanos(meta.CreatedAt),
			InitialCash: meta.InitialCash,
			Pipeline:    meta.Pipeline,
		},
		Holdings: make([]domain.Holding, len(holdings)),
		Stats:    make([]domain.Snapshot, len(stats)),
		Fills:    make([]FillRecord, len(fills)),
	}
	for i, h := range holdings {
		l.Holdings[i] = domain.Holding{AsOf: fromNanos(h.Timestamp), AssetID: domain.AssetID(h.AssetID), Shares: h.Shares}
	}
	for i, s := range stats {
		l.Stats[i] = domain.Snapshot{
			Timestamp:     fromNanos(s.Timestamp),
			NetAssetValue: s.NetAssetValue,
			Cash:          s.Cash,
			NetWealth:     s.NetWealth,
			GrossExposure: s.GrossExposure,
			Leverage:      s.Leverage,
		}
	}
	for i, f := range fills {
		l.Fills[i] = FillRecord{Timestamp: fromNanos(f.Timestamp), AssetID: domain.AssetID(f.AssetID), Shares: f.Shares, Price: f.Price}
	}
	if _, err := l.Ledger(); err != nil {
		return nil, err
	}
	return l, nil
}

// Ledger rebuilds the holdings ledger recorded in the log.
func (l *Log) Ledger() (*portfolio.Ledger, error) {
	ledger, err := portfolio.Restore(l.Holdings)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLog, HoldingsFile, err)
	}
	return ledger, nil
}

func writeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	if err := msgpack.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}
	return f.Close()
}

func readFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptLog, filepath.Base(path), err)
	}
	return nil
}

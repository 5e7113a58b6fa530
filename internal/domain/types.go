package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AssetID identifies a tradable asset.
type AssetID int64

// CashID is the reserved asset id of the cash position.
const CashID AssetID = -1

// IsCash reports whether the id designates cash.
func (a AssetID) IsCash() bool {
	return a == CashID
}

func (a AssetID) String() string {
	if a.IsCash() {
		return "cash"
	}
	return fmt.Sprintf("asset(%d)", int64(a))
}

// Holding is one ledger row: the signed share count of an asset as of a time.
type Holding struct {
	AsOf    time.Time
	AssetID AssetID
	Shares  float64
}

// Price is one price row for an asset at a time.
type Price struct {
	AssetID AssetID
	Price   float64
}

// Valued is a holding joined with its price.
type Valued struct {
	Holding
	Price float64
	Value float64
}

// Snapshot is the valuation of a portfolio at one timestamp.
type Snapshot struct {
	Timestamp     time.Time
	NetAssetValue float64
	Cash          float64
	NetWealth     float64
	GrossExposure float64
	Leverage      float64
}

// PriceSource provides prices for assets at a point in time. Implementations
// return at most one row per requested id; missing rows are allowed and are
// reported by the caller.
type PriceSource interface {
	GetPrices(ctx context.Context, t time.Time, ids []AssetID) ([]Price, error)
}

// ErrMissingPrice is returned when a price source does not cover every
// requested non-cash asset.
var ErrMissingPrice = errors.New("missing price")

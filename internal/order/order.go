package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vk/backgrid/internal/domain"
)

var (
	// ErrInvalidOrder is returned by Validate.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrNotMergeable is returned by Merge for orders with different asset,
	// policy or window.
	ErrNotMergeable = errors.New("orders are not mergeable")
	// ErrPolicyNotImplemented is returned when pricing a TWAP or VWAP order.
	ErrPolicyNotImplemented = errors.New("price policy not implemented")
)

// Policy selects how an order's execution price is determined.
type Policy int

const (
	// AtStart prices the order at the start of its window.
	AtStart Policy = iota
	// AtEnd prices the order at the end of its window.
	AtEnd
	// TWAP is a time-weighted average over the window.
	TWAP
	// VWAP is a volume-weighted average over the window.
	VWAP
)

func (p Policy) String() string {
	switch p {
	case AtStart:
		return "start"
	case AtEnd:
		return "end"
	case TWAP:
		return "twap"
	case VWAP:
		return "vwap"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return AtStart, nil
	case "end":
		return AtEnd, nil
	case "twap":
		return TWAP, nil
	case "vwap":
		return VWAP, nil
	default:
		return 0, fmt.Errorf("unknown price policy %q", s)
	}
}

// Order is a request to trade Quantity shares (signed) of an asset over
// [Start, End].
type Order struct {
	AssetID  domain.AssetID
	Quantity float64
	Start    time.Time
	End      time.Time
	Policy   Policy
}

// Validate checks the order is well formed.
func (o Order) Validate() error {
	if o.AssetID.IsCash() {
		return fmt.Errorf("%w: cash cannot be traded", ErrInvalidOrder)
	}
	if math.IsNaN(o.Quantity) || math.IsInf(o.Quantity, 0) {
		return fmt.Errorf("%w: quantity %v for %s is not finite", ErrInvalidOrder, o.Quantity, o.AssetID)
	}
	if o.End.Before(o.Start) {
		return fmt.Errorf("%w: window [%s, %s] for %s ends before it starts",
			ErrInvalidOrder, o.Start.Format(time.RFC3339), o.End.Format(time.RFC3339), o.AssetID)
	}
	return nil
}

// ExecutionPrice resolves the order's price from the source according to its
// policy.
func (o Order) ExecutionPrice(ctx context.Context, src domain.PriceSource) (float64, error) {
	var at time.Time
	switch o.Policy {
	case AtStart:
		at = o.Start
	case AtEnd:
		at = o.End
	default:
		return 0, fmt.Errorf("%w: %s", ErrPolicyNotImplemented, o.Policy)
	}

	prices, err := src.GetPrices(ctx, at, []domain.AssetID{o.AssetID})
	if err != nil {
		return 0, err
	}
	for _, p := range prices {
		if p.AssetID == o.AssetID {
			return p.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: %s at %s", domain.ErrMissingPrice, o.AssetID, at.Format(time.RFC3339))
}

// IsMergeable reports whether the orders trade the same asset with the same
// policy over exactly the same window.
func (o Order) IsMergeable(other Order) bool {
	return o.AssetID == other.AssetID &&
		o.Policy == other.Policy &&
		o.Start.Equal(other.Start) &&
		o.End.Equal(other.End)
}

// Merge returns a new order whose quantity is the sum of both.
func (o Order) Merge(other Order) (Order, error) {
	if !o.IsMergeable(other) {
		return Order{}, fmt.Errorf("%w: %s/%s [%s, %s] and %s/%s [%s, %s]", ErrNotMergeable,
			o.AssetID, o.Policy, o.Start.Format(time.RFC3339), o.End.Format(time.RFC3339),
			other.AssetID, other.Policy, other.Start.Format(time.RFC3339), other.End.Format(time.RFC3339))
	}
	merged := o
	merged.Quantity += other.Quantity
	return merged, nil
}

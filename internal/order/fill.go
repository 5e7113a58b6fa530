package order

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidFill is returned by NewFill for zero shares or a non-positive price.
var ErrInvalidFill = errors.New("invalid fill")

// Fill is the realized execution of an order.
type Fill struct {
	Timestamp time.Time
	Shares    float64
	Price     float64
	// Order points at the order that produced the fill, for audit only.
	Order *Order
}

// NewFill validates and creates a fill.
func NewFill(ts time.Time, shares, price float64, o *Order) (Fill, error) {
	if shares == 0 || math.IsNaN(shares) || math.IsInf(shares, 0) {
		return Fill{}, fmt.Errorf("%w: shares must be finite and non-zero, got %v", ErrInvalidFill, shares)
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return Fill{}, fmt.Errorf("%w: price must be finite and positive, got %v", ErrInvalidFill, price)
	}
	if o == nil {
		return Fill{}, fmt.Errorf("%w: missing order", ErrInvalidFill)
	}
	return Fill{Timestamp: ts, Shares: shares, Price: price, Order: o}, nil
}

// CashFlow is the change in cash caused by the fill: buying spends cash,
// selling raises it.
func (f Fill) CashFlow() float64 {
	return -f.Shares * f.Price
}

// Package domain holds the portfolio types shared by the order, valuation,
// portfolio and backtest packages.
//
// Assets are identified by int64 ids. The reserved id CashID designates the
// cash position, whose price is always 1.
package domain

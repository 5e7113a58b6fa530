// Package portfolio keeps the time-indexed holdings of a simulated account
// and the valuation snapshots derived from them.
//
// A Ledger is an append-only sequence of row sets. Each row set holds exactly
// one row per asset, always including cash (domain.CashID), and every row set
// is validated before it is appended. Time never moves backwards: Advance
// rejects timestamps earlier than the last one, and a rejected Advance leaves
// the ledger untouched.
//
// A Portfolio couples a Ledger with a valuation.Valuator and memoizes one
// snapshot per timestamp. Advancing a Portfolio snapshots the previous last
// timestamp if nobody asked for it yet, so every timestamp that was ever the
// latest ends up with statistics.
package portfolio

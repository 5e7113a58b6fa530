// Package valuation marks holdings to market and summarizes them into
// portfolio statistics.
//
// # Why Valuation Exists
//
// The ledger only knows share counts. Turning shares into money needs a
// price source, and the rules around that lookup are strict:
//
//   - **Cash is never priced externally.** It is always worth 1.0 per unit and
//     is never sent to the price source.
//   - **Missing prices are fatal.** If the source returns fewer prices than
//     requested non-cash assets, the call fails with ErrMissingPrice rather
//     than valuing the gap at zero.
//   - **Statistics must be finite.** Net asset value, cash and net wealth are
//     checked and ErrNonFinite is returned otherwise.
//
// StaticPrices is the in-memory price source used by the backtest driver and
// tests. It can be filled from a bars table or a csv file.
package valuation

// Package backtest drives a pipeline through a simulated trading period.
//
// # Why Backtest Exists
//
// The execution engine produces tables and the portfolio packages account
// for trades, but neither knows about the other. The Runner is the loop that
// joins them:
//
//   - **Forecast.** Optionally fit every node, then predict, and read the
//     targets table (timestamp, asset_id, target) from the configured output.
//   - **Trade.** For each decision timestamp t_i, first execute the orders
//     whose window ends at t_i and apply their fills to the portfolio, then
//     submit orders for (target - current shares) over [t_i, t_i+1].
//   - **Value.** Snapshots are taken lazily as the portfolio advances; the
//     final timestamp is always snapshotted before returning.
package backtest

// Package portfoliolog persists the outcome of a backtest run as a directory
// of msgpack files and publishes such directories to S3.
//
// Layout:
//
//	<dir>/meta.msgpack      run id, creation time, initial cash, pipeline path
//	<dir>/holdings.msgpack  one record per ledger row (timestamp, asset_id, shares)
//	<dir>/stats.msgpack     one record per valuation snapshot
//	<dir>/fills.msgpack     one record per fill
//
// Timestamps are stored as Unix nanoseconds and asset ids as int64, so
// reading a log back yields exactly the values that were written, in UTC.
package portfoliolog

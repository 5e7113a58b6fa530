// Package frames holds the dataframe-go conventions shared by node kinds,
// price sources and the backtest driver.
//
// Tables passed between nodes are *dataframe.DataFrame values with well known
// column names:
//
//	bars:    timestamp, asset_id, close
//	returns: timestamp, asset_id, return
//	targets: timestamp, asset_id, target
//
// The helpers here build such tables from typed rows and read typed rows back,
// reporting missing columns and nil cells as errors instead of skipping them.
package frames

// Package order models trade intents and their executions.
//
// An Order asks for a signed quantity of one asset over a time window
// [Start, End], priced according to a Policy. A Fill is the realized
// execution of an order: a timestamp, a non-zero signed share count, a
// positive price and a back-reference to the order it came from.
//
// The Processor collects submitted orders and, when the simulation clock
// reaches the end of their window, merges compatible orders and emits one
// fill per remaining order.
//
// Only the AtStart and AtEnd policies resolve to a price. TWAP and VWAP are
// accepted as tags but fail with ErrPolicyNotImplemented when priced.
package order

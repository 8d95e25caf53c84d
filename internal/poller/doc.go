// Package poller implements the price poller.
//
// The poller:
//   - Polls the exchange ticker of each configured market on a fixed interval
//   - Builds fresh market snapshots every cycle, since snapshots never invalidate
//   - Uses bounded concurrency for the per-market requests
//   - Hands one ledger price entry per market to a Handler, in market order
package poller

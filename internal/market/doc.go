// Package market implements market snapshots and market ranking.
//
// A Snapshot wraps one trading pair and populates each of its fields (summary,
// ticker, trade history, orderbooks) on first access, memoizing the result for the
// lifetime of the Snapshot. A failed fetch leaves the field unfetched so a later call
// can try again. Fields are never invalidated; build a new Snapshot for fresh data.
//
// A Ranker queries a market listing once per call and hands back unfetched Snapshots.
//
// Snapshots are meant for a single owner and do no locking.
package market

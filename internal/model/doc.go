// Package model defines the structured market data exposed by coinanalysis.
//
// Conventions:
//   - Prices, quantities and volumes: shopspring decimal.Decimal, never float64
//   - Timestamps: time.Time in UTC
//   - Market names: "BASIS-CODE" (e.g. "BTC-LTC" prices LTC in BTC)
package model

// Package exchange is the HTTP client for the Bittrex v1.1 public REST API.
//
// Endpoints (all GET, under https://bittrex.com/api/v1.1):
//   - /public/getmarkets
//   - /public/getmarketsummaries
//   - /public/getmarketsummary?market=BTC-LTC
//   - /public/getmarkethistory?market=BTC-LTC
//   - /public/getticker?market=BTC-LTC
//   - /public/getorderbook?market=BTC-LTC&type=buy|sell|both&depth=20
//
// Every response is an Envelope {success, message, result}. The client returns the
// envelope as-is; callers decide what success=false means for them. The client never
// retries and never throttles.
package exchange

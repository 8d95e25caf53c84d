// Package metrics defines the Prometheus collectors for exchange traffic.
//
// Metrics:
//   - coinanalysis_exchange_requests_total{endpoint,outcome}
//   - coinanalysis_exchange_request_duration_seconds{endpoint}
//
// Outcomes are ok, upstream_error (success=false), http_error and transport_error.
package metrics

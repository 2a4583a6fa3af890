// Package metrics provides the centralized Prometheus metrics registry for the
// apix client. All metrics are defined in their respective packages (client)
// to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the apix client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - apix_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - apix_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - apix_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - apix_retries_total{error_class} (Counter): Retry attempts by error class
//   - apix_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(apix_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(apix_request_duration_seconds_bucket[5m]))
//
//   # Retry Pressure by Error Class
//   sum by (error_class) (rate(apix_retries_total[5m]))

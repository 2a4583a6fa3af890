// Package client provides the core HTTP client for the Cisco Support and
// Service APIs: query specs, page normalization, error classification, and
// bounded retry.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for query operations.
var (
	apixRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apix_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apixRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apix_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	apixErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apix_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// Default timeouts. Support-style endpoints page through large result sets
// and get more headroom than the inventory-style endpoints.
const (
	DefaultTimeout         = 10 * time.Second
	SupportEndpointTimeout = 15 * time.Second
	ServiceEndpointTimeout = 10 * time.Second
	DefaultMimeType        = "application/json"
)

// Config holds the query client configuration.
type Config struct {
	// HTTPClient is the transport used for all calls. Per-request timeouts
	// come from each QuerySpec, not from this client.
	HTTPClient *http.Client

	// MimeType is the Accept header value.
	MimeType string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		HTTPClient: &http.Client{},
		MimeType:   DefaultMimeType,
	}
}

// QueryClient issues one authenticated HTTP call at a time and returns the
// parsed page. It holds no query state between calls.
type QueryClient struct {
	httpClient *http.Client
	mimeType   string
	logger     zerolog.Logger
}

// New creates a query client.
func New(cfg Config) *QueryClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.MimeType == "" {
		cfg.MimeType = DefaultMimeType
	}
	return &QueryClient{
		httpClient: cfg.HTTPClient,
		mimeType:   cfg.MimeType,
		logger:     log.With().Str("component", "apix-client").Logger(),
	}
}

// Send issues the prepared request and normalizes the response into a Page.
// Any non-2xx response surfaces as an HTTPError carrying the status code and
// body for classification.
func (c *QueryClient) Send(ctx context.Context, req Request) (Page, error) {
	endpoint := req.Spec.Name

	start := time.Now()
	defer func() {
		apixRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	u, err := req.BuildURL()
	if err != nil {
		return Page{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, req.timeout())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), u, http.NoBody)
	if err != nil {
		return Page{}, fmt.Errorf("create request for %s: %w", endpoint, err)
	}
	httpReq.Header.Set("Accept", c.mimeType)
	httpReq.Header.Set("Authorization", req.Token)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.method()).
		Int("page", req.PageIndex).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		apixErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		apixRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return Page{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apixErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return Page{}, fmt.Errorf("read response from %s: %w", endpoint, err)
	}

	apixRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Endpoint:   endpoint,
		}
		class := Classify(httpErr)
		apixErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("API request error")
		return Page{}, httpErr
	}

	page, err := parsePage(body, req.Spec, req.PageIndex)
	if err != nil {
		apixErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
		return Page{}, err
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("records", len(page.Records)).
		Int("next_index", page.NextIndex).
		Int("last_index", page.LastIndex).
		Msg("Parsed response page")

	return page, nil
}

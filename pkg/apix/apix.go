// Package apix is the high-level client for the Cisco Support and Service
// APIs. It wires authentication, batching, pacing, retry, and pagination
// behind per-endpoint query methods returning combined result sets.
package apix

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/apixtools/cisco-apix/pkg/auth"
	"github.com/apixtools/cisco-apix/pkg/batch"
	"github.com/apixtools/cisco-apix/pkg/client"
	"github.com/apixtools/cisco-apix/pkg/pagination"
	"github.com/apixtools/cisco-apix/pkg/ratelimit"
)

// Config holds the high-level client configuration. Zero values fall back
// to production defaults.
type Config struct {
	// Credentials is the API client key pair. Required.
	Credentials auth.Credentials

	// CustomerID is injected into every query against an endpoint that
	// requires one, unless the call supplies its own.
	CustomerID string

	// TokenURL overrides the default token endpoint.
	TokenURL string

	// ServiceBaseURL, EoXURL, and SN2InfoURL override the production API
	// locations, mainly for tests against a local server.
	ServiceBaseURL string
	EoXURL         string
	SN2InfoURL     string

	// HTTPClient is shared by the token manager and the query client.
	HTTPClient *http.Client

	// MaxAttempts and RetryDelay bound the per-call retry loop.
	MaxAttempts int
	RetryDelay  time.Duration

	// PaceInterval is the minimum delay between successive HTTP calls.
	PaceInterval time.Duration

	// RetryableStatuses lists extra HTTP statuses to retry on top of the
	// built-in 5xx and 429 rules.
	RetryableStatuses []int
}

// Client runs queries against the full endpoint surface. All methods are
// synchronous; calls within one query are sequential and paced.
type Client struct {
	customerID string
	serviceURL string
	eoxURL     string
	snURL      string

	auth   *auth.Manager
	agg    *pagination.Aggregator
	logger zerolog.Logger
}

// New creates a client from the given configuration.
func New(cfg Config) *Client {
	authOpts := []auth.Option{}
	if cfg.TokenURL != "" {
		authOpts = append(authOpts, auth.WithTokenURL(cfg.TokenURL))
	}
	if cfg.HTTPClient != nil {
		authOpts = append(authOpts, auth.WithHTTPClient(cfg.HTTPClient))
	}
	manager := auth.NewManager(cfg.Credentials, authOpts...)

	queryClient := client.New(client.Config{HTTPClient: cfg.HTTPClient})

	agg := pagination.New(pagination.Config{
		Client: queryClient,
		Tokens: func(ctx context.Context) (string, error) {
			token, err := manager.EnsureValid(ctx)
			if err != nil {
				return "", err
			}
			return token.HeaderValue(), nil
		},
		Executor: client.NewExecutor(cfg.MaxAttempts, cfg.RetryDelay),
		Pacer:    ratelimit.NewPacer(cfg.PaceInterval),
		Classify: client.NewClassifier(cfg.RetryableStatuses...),
	})

	return &Client{
		customerID: cfg.CustomerID,
		serviceURL: cfg.ServiceBaseURL,
		eoxURL:     cfg.EoXURL,
		snURL:      cfg.SN2InfoURL,
		auth:       manager,
		agg:        agg,
		logger:     log.With().Str("component", "apix").Logger(),
	}
}

// Authenticate forces a fresh token. Queries call EnsureValid on their own,
// so this is only needed to validate credentials up front.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.auth.Authenticate(ctx)
	return err
}

// CurrentToken returns a token valid at the time of the call, refreshing if
// needed.
func (c *Client) CurrentToken(ctx context.Context) (auth.Token, error) {
	return c.auth.EnsureValid(ctx)
}

// spec resolves an endpoint name, applying any configured URL overrides.
func (c *Client) spec(name string) (client.QuerySpec, bool) {
	s, ok := Lookup(name)
	if !ok {
		return s, false
	}
	switch name {
	case EndpointEoXByProductID:
		if c.eoxURL != "" {
			s.URL = c.eoxURL
		}
	case EndpointCoverageSummaryBySerials:
		if c.snURL != "" {
			s.URL = c.snURL
		}
	default:
		if c.serviceURL != "" {
			s.URL = c.serviceURL + strings.TrimPrefix(s.URL, serviceBaseURL)
		}
	}
	return s, true
}

// RunQuery runs one logical query against a registered endpoint and returns
// all records. Paginated endpoints are walked to the last page unless the
// caller pins a specific page via the "page" parameter. Endpoints that bind
// an item list into the URL are served by their typed methods instead.
func (c *Client) RunQuery(ctx context.Context, endpoint string, params map[string]string) (client.ResultSet, error) {
	spec, ok := c.spec(endpoint)
	if !ok {
		return nil, &ConfigurationError{Endpoint: endpoint, Err: ErrUnknownEndpoint}
	}
	if strings.Contains(spec.URL, "{items}") {
		return nil, &ConfigurationError{Endpoint: endpoint, Err: ErrItemsRequired}
	}

	merged := make(map[string]string, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	if spec.RequiresCustomerID && merged["customerId"] == "" {
		if c.customerID == "" {
			return nil, &ConfigurationError{Endpoint: endpoint, Err: ErrMissingCustomerID}
		}
		merged["customerId"] = c.customerID
	}

	paginate := spec.Pagination != client.PaginationNone
	if _, pinned := merged["page"]; pinned {
		paginate = false
	}

	return c.agg.Run(ctx, spec, merged, nil, paginate)
}

// EoXByProductID retrieves end-of-life records for the given product IDs.
// The list is cleaned and windowed before querying; an input that cleans
// down to nothing returns an empty result without any network call.
func (c *Client) EoXByProductID(ctx context.Context, productIDs []string) (client.ResultSet, error) {
	spec, _ := c.spec(EndpointEoXByProductID)

	windows := batch.Prepare(productIDs, batch.DefaultEoXBlacklist, batch.DefaultEoXWindow)
	if len(windows) == 0 {
		c.logger.Warn().Str("endpoint", spec.Name).Msg("No items left after cleaning, skipping query")
		return client.ResultSet{}, nil
	}

	return c.agg.Run(ctx, spec, nil, windows, true)
}

// CoverageSummaryBySerialNumbers retrieves coverage summaries for the given
// serial numbers. The endpoint returns everything in one page per window,
// so only windowing applies.
func (c *Client) CoverageSummaryBySerialNumbers(ctx context.Context, serialNumbers []string) (client.ResultSet, error) {
	spec, _ := c.spec(EndpointCoverageSummaryBySerials)

	windows := batch.Prepare(serialNumbers, batch.DefaultSerialBlacklist, batch.DefaultSerialWindow)
	if len(windows) == 0 {
		c.logger.Warn().Str("endpoint", spec.Name).Msg("No items left after cleaning, skipping query")
		return client.ResultSet{}, nil
	}

	return c.agg.Run(ctx, spec, nil, windows, false)
}

// Convenience wrappers over RunQuery for the service endpoints.

// HardwareInventory queries the hardware inventory.
func (c *Client) HardwareInventory(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointHardwareInventory, params)
}

// NetworkElements queries the network element inventory.
func (c *Client) NetworkElements(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointNetworkElements, params)
}

// SoftwareInventory queries the software inventory.
func (c *Client) SoftwareInventory(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointSoftwareInventory, params)
}

// CustomerDetails queries the customer details of the account.
func (c *Client) CustomerDetails(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointCustomerDetails, params)
}

// InventoryGroups queries the customer's inventory groups.
func (c *Client) InventoryGroups(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointInventoryGroups, params)
}

// ContractDetails queries service contract details.
func (c *Client) ContractDetails(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointContractDetails, params)
}

// ContractCoverage queries covered devices.
func (c *Client) ContractCoverage(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointContractCoverage, params)
}

// ContractNotCovered queries devices without contract coverage.
func (c *Client) ContractNotCovered(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointContractNotCovered, params)
}

// FieldNotices queries field notices for inventory devices.
func (c *Client) FieldNotices(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointFieldNotices, params)
}

// FieldNoticeBulletins queries field notice bulletins.
func (c *Client) FieldNoticeBulletins(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointFieldNoticeBulletins, params)
}

// HardwareEOL queries hardware end-of-life records for inventory devices.
func (c *Client) HardwareEOL(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointHardwareEOL, params)
}

// HardwareEOLBulletins queries hardware end-of-life bulletins.
func (c *Client) HardwareEOLBulletins(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointHardwareEOLBulletins, params)
}

// SecurityAdvisories queries security advisories for inventory devices.
func (c *Client) SecurityAdvisories(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointSecurityAdvisories, params)
}

// SecurityAdvisoryBulletins queries security advisory bulletins.
func (c *Client) SecurityAdvisoryBulletins(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointSecurityAdvBulletins, params)
}

// SoftwareEOL queries software end-of-life records for inventory devices.
func (c *Client) SoftwareEOL(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointSoftwareEOL, params)
}

// SoftwareEOLBulletins queries software end-of-life bulletins.
func (c *Client) SoftwareEOLBulletins(ctx context.Context, params map[string]string) (client.ResultSet, error) {
	return c.RunQuery(ctx, EndpointSoftwareEOLBulletins, params)
}

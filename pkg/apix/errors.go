package apix

import (
	"errors"
	"fmt"
)

// Configuration errors. These are raised before any network call is made.
var (
	// ErrUnknownEndpoint is returned when a query names an endpoint that is
	// not in the registry.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrMissingCustomerID is returned when an endpoint requires a
	// customerId and neither the client nor the call supplies one.
	ErrMissingCustomerID = errors.New("customerId required but not configured")

	// ErrItemsRequired is returned when an item-bound endpoint is driven
	// through the generic query path instead of its typed helper.
	ErrItemsRequired = errors.New("endpoint requires an item list")
)

// ConfigurationError reports an invalid query setup. It is always fatal and
// never retried.
type ConfigurationError struct {
	Endpoint string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("apix configuration error: endpoint %s: %v", e.Endpoint, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PaginationStyle describes how an endpoint advances through result pages.
type PaginationStyle string

const (
	// PaginationNone marks endpoints that return a single page.
	PaginationNone PaginationStyle = "none"

	// PaginationPathIndex marks endpoints with the page index embedded in
	// the URL path (the EoX family).
	PaginationPathIndex PaginationStyle = "path_index"

	// PaginationPageParam marks endpoints paged via a "page" query
	// parameter (the inventory and alert families).
	PaginationPageParam PaginationStyle = "page_param"
)

// Placeholders recognized in QuerySpec.URL templates.
const (
	placeholderIndex = "{index}"
	placeholderItems = "{items}"
)

// QuerySpec describes one API endpoint: where it lives, how it is called,
// and how its response is normalized into a Page.
type QuerySpec struct {
	// Name identifies the endpoint in logs, metrics, and error context.
	Name string

	// URL is the endpoint URL template. It may contain {index} for a
	// path-embedded page index and {items} for a comma-joined item list.
	URL string

	// Method is the HTTP method, GET unless stated otherwise.
	Method string

	// Params holds default query parameters sent on every call.
	Params map[string]string

	// RequiresCustomerID marks endpoints that reject requests without a
	// customerId parameter.
	RequiresCustomerID bool

	// RecordsKey is the JSON key holding the record list. Empty means the
	// standard "data" key; well-known alternate keys are tried as a
	// fallback either way.
	RecordsKey string

	// Pagination selects the pagination style for this endpoint.
	Pagination PaginationStyle

	// Timeout is the per-request timeout. Support-style endpoints use a
	// longer timeout than inventory-style ones.
	Timeout time.Duration
}

// Request is one prepared call against a QuerySpec: the window items bound
// into the URL, the page index, and the token authorizing the call.
type Request struct {
	Spec      QuerySpec
	Params    map[string]string
	Items     []string
	PageIndex int
	Token     string
}

// BuildURL expands the spec's URL template with the request's page index and
// items and appends the merged query parameters.
func (r Request) BuildURL() (string, error) {
	u := r.Spec.URL

	if strings.Contains(u, placeholderIndex) {
		if r.PageIndex < 1 {
			return "", fmt.Errorf("endpoint %s: page index required in path", r.Spec.Name)
		}
		u = strings.ReplaceAll(u, placeholderIndex, strconv.Itoa(r.PageIndex))
	}

	if strings.Contains(u, placeholderItems) {
		if len(r.Items) == 0 {
			return "", fmt.Errorf("endpoint %s: item list required in path", r.Spec.Name)
		}
		u = strings.ReplaceAll(u, placeholderItems, url.PathEscape(strings.Join(r.Items, ",")))
	}

	params := url.Values{}
	for k, v := range r.Spec.Params {
		params.Set(k, v)
	}
	for k, v := range r.Params {
		params.Set(k, v)
	}
	if r.Spec.Pagination == PaginationPageParam && r.PageIndex > 0 {
		params.Set("page", strconv.Itoa(r.PageIndex))
	}

	if len(params) == 0 {
		return u, nil
	}
	return u + "?" + params.Encode(), nil
}

// method returns the HTTP method, defaulting to GET.
func (r Request) method() string {
	if r.Spec.Method == "" {
		return http.MethodGet
	}
	return r.Spec.Method
}

// timeout returns the per-request timeout, defaulting to DefaultTimeout.
func (r Request) timeout() time.Duration {
	if r.Spec.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Spec.Timeout
}

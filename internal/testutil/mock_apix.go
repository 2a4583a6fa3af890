// Package testutil provides testing utilities for the apix client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Well-known paths served by the mock.
const (
	TokenPath   = "/oauth2/default/v1/token"
	EoXPath     = "/supporttools/eox/rest/5/EOXByProductID/"
	SN2InfoPath = "/sn2info/v2/coverage/summary/serial_numbers/"
)

// MockResponse defines the behavior for one mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPIX is a configurable mock API server: it serves the token endpoint
// plus any configured query endpoints, and tracks the traffic it sees.
type MockAPIX struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	prefixes map[string]http.HandlerFunc

	// Token endpoint behavior.
	TokenStatus int
	AccessToken string
	ExpiresIn   int

	// Tracking
	RequestCount   int
	TokenCount     int
	LastAuthHeader string
}

// NewMockAPIX creates a mock server issuing tokens at TokenPath.
func NewMockAPIX() *MockAPIX {
	mock := &MockAPIX{
		handlers:    make(map[string]http.HandlerFunc),
		prefixes:    make(map[string]http.HandlerFunc),
		TokenStatus: http.StatusOK,
		AccessToken: "mock-access-token",
		ExpiresIn:   3600,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == TokenPath {
			mock.serveToken(w, r)
			return
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastAuthHeader = r.Header.Get("Authorization")
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		if !exists {
			for prefix, h := range mock.prefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					handler, exists = h, true
					break
				}
			}
		}
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error": "no mock handler for %s"}`, r.URL.Path)
	}))

	return mock
}

// URL returns the mock server base URL.
func (m *MockAPIX) URL() string {
	return m.server.URL
}

// TokenURL returns the mock token endpoint URL.
func (m *MockAPIX) TokenURL() string {
	return m.server.URL + TokenPath
}

// Close shuts down the mock server.
func (m *MockAPIX) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPIX) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.TokenCount = 0
	m.LastAuthHeader = ""
}

// GetRequestCount returns the number of query requests seen, excluding
// token requests.
func (m *MockAPIX) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetTokenCount returns the number of token requests seen.
func (m *MockAPIX) GetTokenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TokenCount
}

// SetHandler sets a custom handler for an exact path.
func (m *MockAPIX) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetPrefixHandler sets a custom handler for every path under a prefix.
// Exact-path handlers take precedence.
func (m *MockAPIX) SetPrefixHandler(prefix string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefixes[prefix] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPIX) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// ServePagedData serves a service-style endpoint paged via the "page" query
// parameter. Each entry of pages is the JSON array for that page's "data"
// field; the pagination object advertises the total page count.
func (m *MockAPIX) ServePagedData(path string, pages []string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		w.Header().Set("Content-Type", "application/json")
		if page < 1 || page > len(pages) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error": "page %d out of range"}`, page)
			return
		}
		fmt.Fprintf(w, `{"data": %s, "pagination": {"page": %d, "pages": %d, "rows": 50}}`,
			pages[page-1], page, len(pages))
	})
}

// ServeEoXPages serves the EoX-by-product-ID endpoint with the page index
// embedded in the URL path. Each entry of pages is the JSON array for that
// page's "EOXRecord" field.
func (m *MockAPIX) ServeEoXPages(pages []string) {
	m.SetPrefixHandler(EoXPath, func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, EoXPath)
		parts := strings.SplitN(rest, "/", 2)
		index, _ := strconv.Atoi(parts[0])

		w.Header().Set("Content-Type", "application/json")
		if index < 1 || index > len(pages) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error": "page index %d out of range"}`, index)
			return
		}
		fmt.Fprintf(w, `{"EOXRecord": %s, "PaginationResponseRecord": {"PageIndex": %d, "LastIndex": %d}}`,
			pages[index-1], index, len(pages))
	})
}

// ServeSerialNumbers serves the coverage summary endpoint, echoing one
// record per serial number bound into the URL path.
func (m *MockAPIX) ServeSerialNumbers() {
	m.SetPrefixHandler(SN2InfoPath, func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, SN2InfoPath)
		var records []map[string]string
		for _, sn := range strings.Split(rest, ",") {
			records = append(records, map[string]string{
				"sr_no":           sn,
				"coverage_status": "covered",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"serial_numbers": records})
	})
}

// serveToken answers the OAuth2 client-credentials request.
func (m *MockAPIX) serveToken(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.TokenCount++
	status := m.TokenStatus
	token := m.AccessToken
	expires := m.ExpiresIn
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"error": "invalid_client"}`)
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "unsupported_grant_type"}`)
		return
	}
	fmt.Fprintf(w, `{"access_token": "%s", "token_type": "Bearer", "expires_in": %d}`, token, expires)
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "rate limit exceeded"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

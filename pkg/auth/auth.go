// Package auth implements the OAuth2 client-credentials flow for the Cisco
// Support and Service APIs and manages the lifetime of the resulting token.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTokenURL is the Cisco SSO token endpoint.
const DefaultTokenURL = "https://id.cisco.com/oauth2/default/v1/token" //nolint:gosec // endpoint, not a credential

const tokenTimeout = 10 * time.Second

// Credentials holds the API client key pair. Immutable once constructed and
// never logged.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Token is an access token issued by the token endpoint together with the
// metadata needed to decide validity locally.
type Token struct {
	AccessToken string
	TokenType   string
	IssuedAt    time.Time
	ExpiresIn   time.Duration
}

// Valid reports whether the token can still authorize a request at the given
// instant. A token is valid strictly before IssuedAt+ExpiresIn; at the
// boundary it is already expired.
func (t Token) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return now.Before(t.IssuedAt.Add(t.ExpiresIn))
}

// HeaderValue returns the Authorization header value for API calls, e.g.
// "Bearer 0123456789abcdef".
func (t Token) HeaderValue() string {
	return t.TokenType + " " + t.AccessToken
}

// AuthError is returned for any token endpoint failure. It is always fatal:
// invalid credentials do not become valid by retrying.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("apix auth error: %v", e.Err)
	}
	return fmt.Sprintf("apix auth error (status %d): %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Manager owns the credential pair and the current token. It refreshes the
// token on demand and replaces it wholesale; callers never see a partially
// updated token. Refresh is serialized by a mutex so concurrent callers do
// not race to re-authenticate.
type Manager struct {
	creds    Credentials
	tokenURL string
	client   *http.Client
	nowFunc  func() time.Time
	logger   zerolog.Logger

	mu      sync.Mutex
	current Token
}

// Option configures the Manager.
type Option func(*Manager)

// WithTokenURL overrides the default Cisco SSO token endpoint.
func WithTokenURL(u string) Option {
	return func(m *Manager) {
		m.tokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		m.client = c
	}
}

// WithNowFunc overrides the time source for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(m *Manager) {
		m.nowFunc = f
	}
}

// NewManager creates a token manager for the given credentials.
func NewManager(creds Credentials, opts ...Option) *Manager {
	m := &Manager{
		creds:    creds,
		tokenURL: DefaultTokenURL,
		client:   &http.Client{Timeout: tokenTimeout},
		nowFunc:  time.Now,
		logger:   log.With().Str("component", "apix-auth").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate performs the client-credentials grant and returns a fresh
// token. The issue timestamp is reset to the moment of authentication.
func (m *Manager) Authenticate(ctx context.Context) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticateLocked(ctx)
}

// EnsureValid returns the current token unchanged if it is still valid,
// otherwise re-authenticates and returns the replacement.
func (m *Manager) EnsureValid(ctx context.Context) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Valid(m.nowFunc()) {
		return m.current, nil
	}
	return m.authenticateLocked(ctx)
}

// Current returns the last issued token without refreshing. The zero Token
// is returned before the first Authenticate call.
func (m *Manager) Current() Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) authenticateLocked(ctx context.Context) (Token, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {m.creds.ClientID},
		"client_secret": {m.creds.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, &AuthError{Err: fmt.Errorf("create token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	issuedAt := m.nowFunc()

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Error().Err(err).Msg("Token request failed")
		return Token{}, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, &AuthError{Err: fmt.Errorf("read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.logger.Error().
			Int("status", resp.StatusCode).
			Msg("Token endpoint returned error status")
		return Token{}, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, &AuthError{Err: fmt.Errorf("parse token response: %w", err)}
	}

	m.current = Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		IssuedAt:    issuedAt,
		ExpiresIn:   time.Duration(tr.ExpiresIn) * time.Second,
	}

	m.logger.Debug().
		Dur("expires_in", m.current.ExpiresIn).
		Msg("Authenticated against token endpoint")

	return m.current, nil
}

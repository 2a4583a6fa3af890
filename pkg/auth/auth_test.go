package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apixtools/cisco-apix/pkg/auth"
)

// tokenJSON returns a valid token endpoint response as JSON bytes.
func tokenJSON(token string, expiresIn int) []byte {
	return []byte(fmt.Sprintf(
		`{"access_token":%q,"token_type":"Bearer","expires_in":%d}`,
		token, expiresIn,
	))
}

func TestTokenValid_Boundary(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := auth.Token{
		AccessToken: "abc",
		TokenType:   "Bearer",
		IssuedAt:    issued,
		ExpiresIn:   3600 * time.Second,
	}

	assert.True(t, tok.Valid(issued.Add(3599*time.Second)), "one second before expiry")
	assert.False(t, tok.Valid(issued.Add(3600*time.Second)), "boundary at equality must be invalid")
	assert.False(t, tok.Valid(issued.Add(3601*time.Second)), "after expiry")
}

func TestTokenValid_ZeroToken(t *testing.T) {
	t.Parallel()

	var tok auth.Token
	assert.False(t, tok.Valid(time.Now()))
}

func TestTokenHeaderValue(t *testing.T) {
	t.Parallel()

	tok := auth.Token{AccessToken: "0123456789abcdef", TokenType: "Bearer"}
	assert.Equal(t, "Bearer 0123456789abcdef", tok.HeaderValue())
}

func TestManagerAuthenticate(t *testing.T) {
	t.Parallel()

	var gotGrant, gotID, gotSecret, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrant = r.PostFormValue("grant_type")
		gotID = r.PostFormValue("client_id")
		gotSecret = r.PostFormValue("client_secret")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(tokenJSON("test-token-123", 3600))
	}))
	defer srv.Close()

	m := auth.NewManager(
		auth.Credentials{ClientID: "my-key", ClientSecret: "my-secret"},
		auth.WithTokenURL(srv.URL),
	)

	tok, err := m.Authenticate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "client_credentials", gotGrant)
	assert.Equal(t, "my-key", gotID)
	assert.Equal(t, "my-secret", gotSecret)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "test-token-123", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, 3600*time.Second, tok.ExpiresIn)
	assert.Equal(t, "Bearer test-token-123", tok.HeaderValue())
}

func TestManagerAuthenticate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "invalid credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			m := auth.NewManager(
				auth.Credentials{ClientID: "k", ClientSecret: "s"},
				auth.WithTokenURL(srv.URL),
			)

			_, err := m.Authenticate(context.Background())
			require.Error(t, err)

			var authErr *auth.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantStatus, authErr.StatusCode)
		})
	}
}

func TestManagerAuthenticate_NetworkError(t *testing.T) {
	t.Parallel()

	m := auth.NewManager(
		auth.Credentials{ClientID: "k", ClientSecret: "s"},
		auth.WithTokenURL("http://127.0.0.1:1"),
	)

	_, err := m.Authenticate(context.Background())
	require.Error(t, err)

	var authErr *auth.AuthError
	assert.True(t, errors.As(err, &authErr), "network failure must surface as AuthError")
}

func TestManagerAuthenticate_MalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	m := auth.NewManager(
		auth.Credentials{ClientID: "k", ClientSecret: "s"},
		auth.WithTokenURL(srv.URL),
	)

	_, err := m.Authenticate(context.Background())
	var authErr *auth.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestManagerEnsureValid_ReusesValidToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		_, _ = w.Write(tokenJSON(fmt.Sprintf("token-%d", n), 3600))
	}))
	defer srv.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := auth.NewManager(
		auth.Credentials{ClientID: "k", ClientSecret: "s"},
		auth.WithTokenURL(srv.URL),
		auth.WithNowFunc(func() time.Time { return now }),
	)

	first, err := m.EnsureValid(context.Background())
	require.NoError(t, err)

	second, err := m.EnsureValid(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, int32(1), calls.Load(), "valid token must not trigger re-authentication")
}

func TestManagerEnsureValid_RefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		_, _ = w.Write(tokenJSON(fmt.Sprintf("token-%d", n), 3600))
	}))
	defer srv.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := auth.NewManager(
		auth.Credentials{ClientID: "k", ClientSecret: "s"},
		auth.WithTokenURL(srv.URL),
		auth.WithNowFunc(func() time.Time { return now }),
	)

	first, err := m.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", first.AccessToken)

	// Advance the clock exactly to expiry; the token is no longer valid and
	// the next EnsureValid must re-authenticate with a reset issue timestamp.
	now = now.Add(3600 * time.Second)

	second, err := m.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", second.AccessToken)
	assert.Equal(t, now, second.IssuedAt)
	assert.Equal(t, int32(2), calls.Load())
}

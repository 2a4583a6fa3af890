package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apixtools/cisco-apix/internal/testutil"
	"github.com/apixtools/cisco-apix/pkg/apix"
	"github.com/apixtools/cisco-apix/pkg/auth"
	"github.com/apixtools/cisco-apix/pkg/export"
)

func newClient(mock *testutil.MockAPIX, customerID string, paceInterval time.Duration) *apix.Client {
	return apix.New(apix.Config{
		Credentials:    auth.Credentials{ClientID: "integration-key", ClientSecret: "integration-secret"},
		CustomerID:     customerID,
		TokenURL:       mock.TokenURL(),
		ServiceBaseURL: mock.URL() + "/cs/api/v1",
		EoXURL:         mock.URL() + testutil.EoXPath + "{index}/{items}",
		SN2InfoURL:     mock.URL() + testutil.SN2InfoPath + "{items}",
		RetryDelay:     5 * time.Millisecond,
		PaceInterval:   paceInterval,
	})
}

// TestEoXReportFlow drives the full path: authenticate, clean and window the
// product list, page through the EoX records, and render the CSV report.
func TestEoXReportFlow(t *testing.T) {
	mock := testutil.NewMockAPIX()
	defer mock.Close()

	mock.ServeEoXPages([]string{
		`[{"EOLProductID": "WS-C3750X-48PF-S", "ProductIDDescription": "Catalyst 3750X",
		   "LastDateOfSupport": {"value": "2021-10-31"}}]`,
		`[{"EOLProductID": "C3KX-PWR-1100WAC", "ProductIDDescription": "Power Supply",
		   "LastDateOfSupport": {"value": "2021-10-31"}}]`,
	})

	client := newClient(mock, "", time.Millisecond)

	ctx := context.Background()
	records, err := client.EoXByProductID(ctx,
		[]string{"WS-C3750X-48PF-S", "C3KX-PWR-1100WAC", "", "n/a", "WS-C3750X-48PF-S"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	var buf bytes.Buffer
	require.NoError(t, export.WriteEoXReport(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "WS-C3750X-48PF-S", rows[1][0])
	assert.Equal(t, "2021-10-31", rows[1][2])
	assert.Equal(t, "C3KX-PWR-1100WAC", rows[2][0])

	assert.Equal(t, 1, mock.GetTokenCount())
	assert.Equal(t, 2, mock.GetRequestCount())
}

// TestTransientServerErrorIsRetried lets the first call fail with a 500 and
// verifies the query still completes.
func TestTransientServerErrorIsRetried(t *testing.T) {
	mock := testutil.NewMockAPIX()
	defer mock.Close()

	calls := 0
	mock.SetHandler("/cs/api/v1/inventory/hardware", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "internal server error"}`))
			return
		}
		w.Write([]byte(`{"data": [{"serialNumber": "FTX1512AHK2"}], "pagination": {"page": 1, "pages": 1}}`))
	})

	client := newClient(mock, "1234", time.Millisecond)

	records, err := client.HardwareInventory(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, calls)
}

// TestClientErrorIsNotRetried verifies a 403 fails on the first attempt.
func TestClientErrorIsNotRetried(t *testing.T) {
	mock := testutil.NewMockAPIX()
	defer mock.Close()

	mock.SetResponse("/cs/api/v1/inventory/hardware", testutil.MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"error": "forbidden"}`,
	})

	client := newClient(mock, "1234", time.Millisecond)

	_, err := client.HardwareInventory(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, mock.GetRequestCount())
}

// TestCallsArePaced verifies successive HTTP calls of one query are spaced
// by the configured interval.
func TestCallsArePaced(t *testing.T) {
	mock := testutil.NewMockAPIX()
	defer mock.Close()

	mock.ServePagedData("/cs/api/v1/inventory/software", []string{
		`[{"swName": "a"}]`,
		`[{"swName": "b"}]`,
		`[{"swName": "c"}]`,
	})

	interval := 40 * time.Millisecond
	client := newClient(mock, "1234", interval)

	start := time.Now()
	records, err := client.SoftwareInventory(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// First call is immediate, the next two wait one interval each.
	assert.GreaterOrEqual(t, time.Since(start), 2*interval)
}

// TestExpiredTokenIsRefreshed forces an immediate expiry and verifies every
// call re-authenticates.
func TestExpiredTokenIsRefreshed(t *testing.T) {
	mock := testutil.NewMockAPIX()
	defer mock.Close()
	mock.ExpiresIn = 0

	mock.ServePagedData("/cs/api/v1/customer-info/customer-details",
		[]string{`[{"customerId": "1234"}]`})

	client := newClient(mock, "", time.Millisecond)

	ctx := context.Background()
	_, err := client.CustomerDetails(ctx, nil)
	require.NoError(t, err)
	_, err = client.CustomerDetails(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, mock.GetTokenCount(), "an expired token must be refreshed per call")
}

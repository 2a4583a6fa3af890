package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apixtools/cisco-apix/pkg/client"
	"github.com/apixtools/cisco-apix/pkg/export"
)

func TestWriteEoXReport(t *testing.T) {
	records := client.ResultSet{
		{
			"EOLProductID":                    "WS-C3750X-48PF-S",
			"ProductIDDescription":            "Catalyst 3750X 48 Port Full PoE IP Base",
			"LastDateOfSupport":               map[string]any{"value": "2021-10-31"},
			"EndOfSWMaintenanceReleases":      map[string]any{"value": "2017-10-30"},
			"EOXExternalAnnouncementDate":     map[string]any{"value": "2015-10-31"},
			"EndOfSaleDate":                   map[string]any{"value": "2016-10-30"},
			"EndOfSecurityVulSupportDate":     map[string]any{"value": "2019-10-30"},
			"EndOfRoutineFailureAnalysisDate": map[string]any{"value": "2017-10-30"},
			"EndOfServiceContractRenewal":     map[string]any{"value": "2021-01-28"},
			"EndOfSvcAttachDate":              map[string]any{"value": "2017-10-30"},
			"LinkToProductBulletinURL":        "https://www.cisco.com/c/en/us/products/eos-eol.html",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteEoXReport(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "EOLProductID", rows[0][0])
	assert.Equal(t, "LinkToProductBulletinURL", rows[0][10])

	assert.Equal(t, "WS-C3750X-48PF-S", rows[1][0])
	assert.Equal(t, "2021-10-31", rows[1][2], "nested date fields must be flattened")
	assert.Equal(t, "https://www.cisco.com/c/en/us/products/eos-eol.html", rows[1][10])
}

func TestWriteEoXReport_MissingFields(t *testing.T) {
	records := client.ResultSet{
		{"EOLProductID": "C3KX-PWR-1100WAC"},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteEoXReport(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "C3KX-PWR-1100WAC", rows[1][0])
	for i := 1; i < len(rows[1]); i++ {
		assert.Empty(t, rows[1][i])
	}
}

func TestWriteEoXReport_EmptyResultSet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteEoXReport(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestWriteEoXReport_NestedFieldWithoutValueKey(t *testing.T) {
	records := client.ResultSet{
		{
			"EOLProductID":      "X",
			"LastDateOfSupport": map[string]any{},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteEoXReport(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, rows[1][2])
}

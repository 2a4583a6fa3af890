// Package export writes query results to CSV reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/apixtools/cisco-apix/pkg/client"
)

// eoxColumns is the EoX report column set. The date columns arrive nested
// under a "value" key and are flattened on the way out.
var eoxColumns = []column{
	{Header: "EOLProductID"},
	{Header: "ProductIDDescription"},
	{Header: "LastDateOfSupport", Nested: true},
	{Header: "EndOfSWMaintenanceReleases", Nested: true},
	{Header: "EOXExternalAnnouncementDate", Nested: true},
	{Header: "EndOfSaleDate", Nested: true},
	{Header: "EndOfSecurityVulSupportDate", Nested: true},
	{Header: "EndOfRoutineFailureAnalysisDate", Nested: true},
	{Header: "EndOfServiceContractRenewal", Nested: true},
	{Header: "EndOfSvcAttachDate", Nested: true},
	{Header: "LinkToProductBulletinURL"},
}

type column struct {
	// Header is both the CSV header and the record key.
	Header string

	// Nested marks date fields whose value sits under a "value" key.
	Nested bool
}

// WriteEoXReport writes the EoX records as a CSV report with a header row.
// Missing fields render as empty cells; rows follow record order.
func WriteEoXReport(w io.Writer, records client.ResultSet) error {
	cw := csv.NewWriter(w)

	headers := make([]string, len(eoxColumns))
	for i, col := range eoxColumns {
		headers[i] = col.Header
	}
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	row := make([]string, len(eoxColumns))
	for _, record := range records {
		for i, col := range eoxColumns {
			row[i] = cell(record, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cell extracts one column value from a record, flattening nested date
// fields and rendering anything unexpected as an empty cell.
func cell(record client.Record, col column) string {
	v, ok := record[col.Header]
	if !ok || v == nil {
		return ""
	}

	if col.Nested {
		nested, ok := v.(map[string]any)
		if !ok {
			return stringify(v)
		}
		inner, ok := nested["value"]
		if !ok || inner == nil {
			return ""
		}
		return stringify(inner)
	}

	return stringify(v)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

package client

import (
	"encoding/json"
	"fmt"
)

// Record is one opaque structured value returned by an endpoint.
type Record map[string]any

// ResultSet is the ordered sequence of records accumulated across all pages
// of all windows for one logical query.
type ResultSet []Record

// Page is one page of a response, normalized across the vendor's response
// shapes. NextIndex and LastIndex are zero when the response carries no
// pagination metadata.
type Page struct {
	Records   []Record
	NextIndex int
	LastIndex int
}

// Terminal reports whether the pagination loop should stop after this page.
// A page without pagination metadata is always terminal (single-page
// response).
func (p Page) Terminal() bool {
	if p.LastIndex == 0 {
		return true
	}
	return p.NextIndex > p.LastIndex
}

// recordListKeys are the vendor record-set keys tried in order when a spec
// does not name one: generic inventory responses use "data", legacy EoX
// responses use "EOXRecord", and coverage summaries use "serial_numbers".
var recordListKeys = []string{"data", "EOXRecord", "serial_numbers"}

// eoxPagination mirrors the PaginationResponseRecord object of the legacy
// record endpoints.
type eoxPagination struct {
	PageIndex int `json:"PageIndex"`
	LastIndex int `json:"LastIndex"`
}

// inventoryPagination mirrors the pagination object of the generic
// inventory endpoints.
type inventoryPagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Rows  int `json:"rows"`
	Total int `json:"total"`
}

// parsePage normalizes a JSON response body into a Page. requestedIndex is
// the page index this request asked for; it anchors NextIndex when the
// response omits its own page position.
func parsePage(body []byte, spec QuerySpec, requestedIndex int) (Page, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Page{}, fmt.Errorf("%w: endpoint %s: %v", ErrMalformedResponse, spec.Name, err)
	}

	page := Page{}

	keys := recordListKeys
	if spec.RecordsKey != "" {
		keys = append([]string{spec.RecordsKey}, recordListKeys...)
	}
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &page.Records); err != nil {
			return Page{}, fmt.Errorf("%w: endpoint %s: record list %q: %v",
				ErrMalformedResponse, spec.Name, key, err)
		}
		break
	}

	if raw, ok := fields["PaginationResponseRecord"]; ok {
		var p eoxPagination
		if err := json.Unmarshal(raw, &p); err != nil {
			return Page{}, fmt.Errorf("%w: endpoint %s: pagination record: %v",
				ErrMalformedResponse, spec.Name, err)
		}
		current := p.PageIndex
		if current < 1 {
			current = requestedIndex
		}
		page.NextIndex = current + 1
		page.LastIndex = p.LastIndex
	} else if raw, ok := fields["pagination"]; ok {
		var p inventoryPagination
		if err := json.Unmarshal(raw, &p); err != nil {
			return Page{}, fmt.Errorf("%w: endpoint %s: pagination object: %v",
				ErrMalformedResponse, spec.Name, err)
		}
		current := p.Page
		if current < 1 {
			current = requestedIndex
		}
		page.NextIndex = current + 1
		page.LastIndex = p.Pages
	}

	return page, nil
}

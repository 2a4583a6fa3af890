// Package batch prepares raw item lists for submission: trimming, blacklist
// filtering, deduplication, and windowing into request-sized chunks. The
// external APIs reject oversized item lists, so windowing is mandatory, not
// an optimization.
package batch

import (
	"strings"
)

// Default window sizes, matching the external per-request item limits.
const (
	// DefaultEoXWindow is the item limit of the EoX-by-product-ID endpoint.
	DefaultEoXWindow = 20

	// DefaultSerialWindow is the item limit of the coverage summary
	// endpoint.
	DefaultSerialWindow = 75
)

// Default blacklists. These placeholder values show up routinely in
// inventory data scraped from device output and would only waste request
// budget.
var (
	// DefaultEoXBlacklist filters product IDs.
	DefaultEoXBlacklist = NewBlacklist("", "n/a", "b", "p", "^mf", "unknown", "unspecified", "x")

	// DefaultSerialBlacklist filters serial numbers.
	DefaultSerialBlacklist = NewBlacklist("", "n/a", "unknown", "unspecified")
)

// Blacklist is a set of item values to drop. Matching is case-insensitive
// against the trimmed item.
type Blacklist map[string]struct{}

// NewBlacklist builds a blacklist from the given values.
func NewBlacklist(values ...string) Blacklist {
	b := make(Blacklist, len(values))
	for _, v := range values {
		b[strings.ToLower(v)] = struct{}{}
	}
	return b
}

// Contains reports whether the trimmed item is blacklisted.
func (b Blacklist) Contains(item string) bool {
	_, ok := b[strings.ToLower(item)]
	return ok
}

// Window is a bounded-size ordered subset of the cleaned item set. Windows
// are disjoint and together cover every surviving item exactly once.
type Window []string

// Prepare cleans and windows a raw item list: each item is trimmed, items
// that are empty or blacklisted after trimming are dropped, duplicates are
// collapsed (case-sensitive, first occurrence wins), and the survivors are
// partitioned into consecutive windows of at most maxWindow items.
func Prepare(items []string, blacklist Blacklist, maxWindow int) []Window {
	if maxWindow <= 0 {
		maxWindow = DefaultEoXWindow
	}

	cleaned := Clean(items, blacklist)

	windows := make([]Window, 0, (len(cleaned)+maxWindow-1)/maxWindow)
	for start := 0; start < len(cleaned); start += maxWindow {
		end := start + maxWindow
		if end > len(cleaned) {
			end = len(cleaned)
		}
		windows = append(windows, Window(cleaned[start:end]))
	}
	return windows
}

// Clean trims, filters, and deduplicates a raw item list. The result keeps
// the first-occurrence order of surviving items.
func Clean(items []string, blacklist Blacklist) []string {
	seen := make(map[string]struct{}, len(items))
	cleaned := make([]string, 0, len(items))

	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if blacklist.Contains(trimmed) {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}

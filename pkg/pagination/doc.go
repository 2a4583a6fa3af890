// Package pagination aggregates multi-page, multi-window query results into
// a single record set.
//
// The vendor APIs are strict about request rate, so fetching is deliberately
// sequential: windows are processed in the order the batch layer produced
// them, pages within a window in strictly increasing index order, and a
// fixed pacing delay separates every HTTP call.
//
// Example usage:
//
//	agg := pagination.New(pagination.Config{Client: queryClient})
//	records, err := agg.Run(ctx, spec, nil, windows, true)
//
// The aggregator:
//   - Binds each window's items into the endpoint URL template
//   - Iterates pages until the end-of-pagination signal
//   - Retries transient failures through the retry executor
//   - Returns the accumulated records as one ordered ResultSet
package pagination

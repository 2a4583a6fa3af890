package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/apixtools/cisco-apix/pkg/batch"
	"github.com/apixtools/cisco-apix/pkg/client"
	"github.com/apixtools/cisco-apix/pkg/ratelimit"
)

// Sender issues one prepared request and returns the parsed page.
// *client.QueryClient satisfies it; tests substitute fakes.
type Sender interface {
	Send(ctx context.Context, req client.Request) (client.Page, error)
}

// TokenSource supplies the Authorization header value for each call. The
// aggregator asks before every request so a token refreshed mid-query is
// picked up on the next call.
type TokenSource func(ctx context.Context) (string, error)

// Config holds the aggregator configuration.
type Config struct {
	// Client issues the HTTP calls. Required.
	Client Sender

	// Tokens supplies the Authorization header value. Optional; when nil,
	// requests go out without an Authorization header (useful in tests).
	Tokens TokenSource

	// Executor wraps each call with bounded retry. Defaults to
	// client.NewExecutor defaults.
	Executor *client.Executor

	// Pacer enforces the delay between successive HTTP calls. Defaults to
	// the standard interval.
	Pacer *ratelimit.Pacer

	// Classify maps errors to retry classes. Defaults to client.Classify.
	Classify func(error) client.ErrorClass
}

// Aggregator merges the pages of all windows of one logical query into a
// combined ResultSet. It keeps no state between Run invocations; every call
// starts from an empty result.
type Aggregator struct {
	client   Sender
	tokens   TokenSource
	executor *client.Executor
	pacer    *ratelimit.Pacer
	classify func(error) client.ErrorClass
	logger   zerolog.Logger
}

// New creates an aggregator.
func New(cfg Config) *Aggregator {
	if cfg.Executor == nil {
		cfg.Executor = client.NewExecutor(0, 0)
	}
	if cfg.Pacer == nil {
		cfg.Pacer = ratelimit.NewPacer(0)
	}
	if cfg.Classify == nil {
		cfg.Classify = client.Classify
	}
	return &Aggregator{
		client:   cfg.Client,
		tokens:   cfg.Tokens,
		executor: cfg.Executor,
		pacer:    cfg.Pacer,
		classify: cfg.Classify,
		logger:   log.With().Str("component", "apix-aggregator").Logger(),
	}
}

// Run executes the query described by spec once per window and returns the
// combined records. With paginate set, each window iterates pages starting
// at index 1 until the end-of-pagination signal; otherwise each window is a
// single call. Windows without items (nil) run the query once without item
// binding, which is how the non-windowed endpoints are driven.
func (a *Aggregator) Run(
	ctx context.Context,
	spec client.QuerySpec,
	params map[string]string,
	windows []batch.Window,
	paginate bool,
) (client.ResultSet, error) {
	start := time.Now()
	results := client.ResultSet{}

	if len(windows) == 0 {
		windows = []batch.Window{nil}
	}

	calls := 0
	for i, window := range windows {
		if paginate {
			n, err := a.runPaginated(ctx, spec, params, window, &results)
			calls += n
			if err != nil {
				return nil, fmt.Errorf("window %d/%d: %w", i+1, len(windows), err)
			}
			continue
		}

		page, err := a.fetch(ctx, client.Request{
			Spec:   spec,
			Params: params,
			Items:  window,
		})
		calls++
		if err != nil {
			return nil, fmt.Errorf("window %d/%d: %w", i+1, len(windows), err)
		}
		results = append(results, page.Records...)
	}

	a.logger.Info().
		Str("endpoint", spec.Name).
		Int("windows", len(windows)).
		Int("requests", calls).
		Int("records", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Query complete")

	return results, nil
}

// runPaginated fetches all pages for one window in strictly increasing
// index order and reports the number of HTTP calls issued.
func (a *Aggregator) runPaginated(
	ctx context.Context,
	spec client.QuerySpec,
	params map[string]string,
	window batch.Window,
	results *client.ResultSet,
) (int, error) {
	calls := 0
	for index := 1; ; {
		page, err := a.fetch(ctx, client.Request{
			Spec:      spec,
			Params:    params,
			Items:     window,
			PageIndex: index,
		})
		calls++
		if err != nil {
			return calls, fmt.Errorf("page %d: %w", index, err)
		}

		*results = append(*results, page.Records...)

		if page.Terminal() {
			return calls, nil
		}
		if page.NextIndex <= index {
			// A server echoing a stale index would otherwise loop forever.
			a.logger.Warn().
				Str("endpoint", spec.Name).
				Int("page", index).
				Int("next_index", page.NextIndex).
				Msg("Pagination metadata did not advance, stopping")
			return calls, nil
		}
		index = page.NextIndex
	}
}

// fetch issues one paced, retried call. The token is obtained outside the
// retry loop: auth failures are fatal and must propagate unretried.
func (a *Aggregator) fetch(ctx context.Context, req client.Request) (client.Page, error) {
	if a.tokens != nil {
		token, err := a.tokens(ctx)
		if err != nil {
			return client.Page{}, err
		}
		req.Token = token
	}

	var page client.Page
	err := a.executor.Execute(ctx, func() error {
		if err := a.pacer.Wait(ctx); err != nil {
			return err
		}
		var sendErr error
		page, sendErr = a.client.Send(ctx, req)
		return sendErr
	}, a.classify)

	return page, err
}

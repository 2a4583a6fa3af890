package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during
	// a retry delay.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrMalformedResponse is returned when a response body cannot be
	// parsed. Never retried: the same body would come back again.
	ErrMalformedResponse = errors.New("malformed response body")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents non-retryable 4xx client errors and
	// malformed responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server and gateway errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network and timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// HTTPError is returned for any non-2xx query response. The status code is
// preserved so the retry executor can classify the failure; the body and
// endpoint give the caller enough context to diagnose without reproducing.
type HTTPError struct {
	StatusCode int
	Body       string
	Endpoint   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("apix query %s failed (status %d): %s", e.Endpoint, e.StatusCode, e.Body)
}

// Classify categorizes an error for retry decisions and observability.
func Classify(err error) ErrorClass {
	return NewClassifier()(err)
}

// NewClassifier returns a classification function that additionally treats
// the listed HTTP statuses as retryable server-style failures. The built-in
// rules already retry every 5xx status and 429.
func NewClassifier(retryableStatuses ...int) func(error) ErrorClass {
	extra := make(map[int]bool, len(retryableStatuses))
	for _, s := range retryableStatuses {
		extra[s] = true
	}

	return func(err error) ErrorClass {
		if errors.Is(err, ErrMalformedResponse) {
			return ErrorClassClient
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			switch {
			case extra[httpErr.StatusCode]:
				return ErrorClassServer
			case httpErr.StatusCode == 429:
				return ErrorClassRateLimit
			case httpErr.StatusCode >= 500:
				return ErrorClassServer
			default:
				return ErrorClassClient
			}
		}

		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return ErrorClassNetwork
		}

		// Unclassified transport failures behave like network errors.
		return ErrorClassNetwork
	}
}

// shouldRetry determines if an error should be retried based on its
// classification.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassClient:
		return false
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// Package fetch issues the crawler's HTTP requests: one page per call, with a
// rotating browser identity and a randomized delay in front of every call.
package fetch

import (
	"context"

	"github.com/Ruscigno/JobPulse/pkg/errors"
)

// Fetcher returns the body of a page that answered 200 OK.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

const metaStatus = "status"

// UnexpectedStatus builds the error returned for a non-200 response.
func UnexpectedStatus(url string, status int) *errors.AppError {
	return errors.NewAppError(errors.ErrCodeUnexpectedStatus, "unexpected response status").
		WithDetails(url).
		WithMetadata(metaStatus, status)
}

// StatusCode returns the HTTP status carried by a fetch error, 200 for a nil
// error and 0 when no response was received.
func StatusCode(err error) int {
	if err == nil {
		return 200
	}
	appErr := errors.GetAppError(err)
	if appErr == nil {
		return 0
	}
	if status, ok := appErr.Metadata[metaStatus].(int); ok {
		return status
	}
	return 0
}

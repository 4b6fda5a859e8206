package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppErrorStatusAndRetry(t *testing.T) {
	cases := []struct {
		code      ErrorCode
		status    int
		retryable bool
	}{
		{ErrCodeBadRequest, http.StatusBadRequest, false},
		{ErrCodeValidation, http.StatusBadRequest, false},
		{ErrCodeUnauthorized, http.StatusUnauthorized, false},
		{ErrCodeNotFound, http.StatusNotFound, false},
		{ErrCodeConflict, http.StatusConflict, false},
		{ErrCodeRateLimit, http.StatusTooManyRequests, true},
		{ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{ErrCodeFetchFailed, http.StatusBadGateway, true},
		{ErrCodeUnexpectedStatus, http.StatusBadGateway, true},
		{ErrCodeUploadFailed, http.StatusBadGateway, true},
		{ErrCodeUploadDestinationUnavailable, http.StatusBadGateway, false},
		{ErrCodeParseFailed, http.StatusInternalServerError, false},
		{ErrCodeCredentialsMissing, http.StatusInternalServerError, false},
		{ErrCodeInternal, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			err := NewAppError(tc.code, "msg")
			assert.Equal(t, tc.status, err.HTTPStatus)
			assert.Equal(t, tc.retryable, err.IsRetryable())
			assert.False(t, err.Timestamp.IsZero())
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError(ErrCodeFetchFailed, "request failed").
		WithDetails("https://example.test").
		WithCause(stderrors.New("connection reset"))
	assert.Equal(t, "FETCH_FAILED: request failed - https://example.test: connection reset", err.Error())
}

func TestWrapErrorKeepsChain(t *testing.T) {
	root := stderrors.New("disk full")
	wrapped := WrapError(root, ErrCodeExportFailed, "failed to write csv")

	assert.True(t, stderrors.Is(wrapped, root))
	assert.Equal(t, ErrCodeExportFailed, wrapped.Code)
	assert.Nil(t, WrapError(nil, ErrCodeInternal, "unused"))
}

func TestWrapErrorInheritsCode(t *testing.T) {
	inner := NewAppError(ErrCodeNotFound, "file not found")
	outer := WrapError(fmt.Errorf("upload: %w", inner), "", "upload aborted")
	assert.Equal(t, ErrCodeNotFound, outer.Code)
	assert.Equal(t, http.StatusNotFound, outer.HTTPStatus)

	plain := WrapError(stderrors.New("boom"), "", "wrapped")
	assert.Equal(t, ErrCodeInternal, plain.Code)
}

func TestGetAppErrorThroughWrapping(t *testing.T) {
	appErr := NewAppError(ErrCodeConflict, "run active")
	err := fmt.Errorf("start: %w", appErr)

	assert.True(t, IsAppError(err))
	assert.Same(t, appErr, GetAppError(err))
	assert.True(t, HasCode(err, ErrCodeConflict))
	assert.False(t, HasCode(err, ErrCodeNotFound))
	assert.False(t, IsAppError(stderrors.New("plain")))
	assert.Nil(t, GetAppError(nil))
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError("invalid configuration", nil)
	assert.False(t, verr.HasFields())

	verr.AddField("locations", "at least one location is required", nil).
		AddField("crawl.detail_workers", "must be positive", 0)
	require.True(t, verr.HasFields())

	assert.Equal(t,
		"VALIDATION_ERROR: invalid configuration; locations: at least one location is required; crawl.detail_workers: must be positive",
		verr.Error())

	var err error = verr
	assert.True(t, HasCode(err, ErrCodeValidation))

	resp := verr.ToErrorResponse()
	assert.Equal(t, ErrCodeValidation, resp.Code)
	assert.Len(t, resp.Fields, 2)
}

func TestWithMetadata(t *testing.T) {
	err := NewAppError(ErrCodeUnexpectedStatus, "unexpected status").
		WithMetadata("status", 429).
		WithMetadata("url", "https://example.test")

	resp := err.ToErrorResponse()
	assert.Equal(t, 429, resp.Metadata["status"])
	assert.Equal(t, "https://example.test", resp.Metadata["url"])
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"directory down retries", NewVenueDirectoryUnavailableError("elasticsearch", fmt.Errorf("dial tcp")), "VENUE_DIRECTORY_UNAVAILABLE", 3},
		{"invalid query is final", NewInvalidAreaQueryError("radiusMeters must be positive"), "INVALID_AREA_QUERY", 0},
		{"parse error is final", NewParseError(fmt.Errorf("unexpected end of JSON input")), "PARSE_ERROR", 0},
		{"notification retries", NewNotificationSendFailedError("sns", fmt.Errorf("throttled")), "NOTIFICATION_SEND_FAILED", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_NonRetryableOverridesPolicy(t *testing.T) {
	stdErr := NewVenueDirectoryUnavailableError("overpass", fmt.Errorf("bad query"))
	stdErr.Retryable = false

	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestToErrorVariables(t *testing.T) {
	bpmn := ConvertToBPMNError(NewInvalidAreaQueryError("latitude out of range"))
	vars := bpmn.ToErrorVariables()

	assert.Equal(t, "INVALID_AREA_QUERY", vars["errorCode"])
	assert.Equal(t, "latitude out of range", vars["errorDetails"])
	assert.Equal(t, false, vars["retryable"])
	assert.Contains(t, vars, "timestamp")
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := fmt.Errorf("search: %w", NewCacheReadFailedError("traffic:area:k", cause))

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, ErrCodeCacheReadFailed, CodeOf(err))

	stdErr, ok := AsStandardError(err)
	require.True(t, ok)
	assert.Contains(t, stdErr.Details, "traffic:area:k")
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(fmt.Errorf("boom")))
}

func TestNormalize(t *testing.T) {
	plain := fmt.Errorf("boom")
	n := Normalize(plain)
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.False(t, n.Retryable)
	assert.ErrorIs(t, n, plain)

	std := NewParseError(fmt.Errorf("bad json"))
	assert.Same(t, std, Normalize(std))
}

func TestVisitStatsUnavailable_Metadata(t *testing.T) {
	err := NewVisitStatsUnavailableError("venue-9", fmt.Errorf("403"))

	assert.Equal(t, "venue-9", err.Metadata["venueId"])
	assert.False(t, IsRetryableErrorCode(err.Code))
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeVenueDirectoryUnavailable: "DIRECTORY",
		ErrCodeVisitStatsUnavailable:     "PROVIDER",
		ErrCodeCacheWriteFailed:          "CACHE",
		ErrCodeNotificationSendFailed:    "NOTIFICATION",
		ErrCodeInvalidAreaQuery:          "VALIDATION",
		ErrCodeParseError:                "VALIDATION",
		ErrCodeInternal:                  "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

// Package errors provides standardized error handling for the traffic analysis
// engine and its BPMN job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Crosses the engine boundary.
	ErrCodeVenueDirectoryUnavailable ErrorCode = "VENUE_DIRECTORY_UNAVAILABLE"
	ErrCodeInvalidAreaQuery          ErrorCode = "INVALID_AREA_QUERY"

	// Recovered locally.
	ErrCodeVisitStatsUnavailable ErrorCode = "VISIT_STATS_UNAVAILABLE"
	ErrCodeCacheReadFailed       ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed      ErrorCode = "CACHE_WRITE_FAILED"

	ErrCodeParseError             ErrorCode = "PARSE_ERROR"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewVenueDirectoryUnavailableError creates a retryable directory error.
func NewVenueDirectoryUnavailableError(source string, err error) *StandardError {
	return newError(ErrCodeVenueDirectoryUnavailable,
		"Venue directory unavailable",
		fmt.Sprintf("source: %s, error: %v", source, err),
		true, err)
}

// NewInvalidAreaQueryError creates a non-retryable input error.
func NewInvalidAreaQueryError(details string) *StandardError {
	return newError(ErrCodeInvalidAreaQuery, "Invalid area query", details, false, nil)
}

// NewVisitStatsUnavailableError marks a provider failure for one venue.
func NewVisitStatsUnavailableError(venueID string, err error) *StandardError {
	return newError(ErrCodeVisitStatsUnavailable,
		"Visit statistics unavailable",
		fmt.Sprintf("venueId: %s, error: %v", venueID, err),
		false, err).WithMetadata("venueId", venueID)
}

// NewCacheReadFailedError wraps a cache backend read failure.
func NewCacheReadFailedError(key string, err error) *StandardError {
	return newError(ErrCodeCacheReadFailed,
		"Analysis cache read failed",
		fmt.Sprintf("key: %s, error: %v", key, err),
		false, err)
}

// NewCacheWriteFailedError wraps a cache backend write failure.
func NewCacheWriteFailedError(key string, err error) *StandardError {
	return newError(ErrCodeCacheWriteFailed,
		"Analysis cache write failed",
		fmt.Sprintf("key: %s, error: %v", key, err),
		false, err)
}

// NewParseError creates a non-retryable job input error.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", err.Error(), false, err)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed,
		"Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %v", channel, err),
		true, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeVenueDirectoryUnavailable: "VENUE_DIRECTORY_UNAVAILABLE",
	ErrCodeInvalidAreaQuery:          "INVALID_AREA_QUERY",
	ErrCodeVisitStatsUnavailable:     "VISIT_STATS_UNAVAILABLE",
	ErrCodeCacheReadFailed:           "CACHE_READ_FAILED",
	ErrCodeCacheWriteFailed:          "CACHE_WRITE_FAILED",
	ErrCodeParseError:                "PARSE_ERROR",
	ErrCodeNotificationSendFailed:    "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeVenueDirectoryUnavailable,
		ErrCodeNotificationSendFailed:
		return 3
	default:
		return 0 // business and input errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DIRECTORY"):
		return "DIRECTORY"
	case strings.Contains(codeStr, "VISIT_STATS"):
		return "PROVIDER"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

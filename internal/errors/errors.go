package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Lucid error code.
type ErrorCode string

const (
	ErrDecodeFailure           ErrorCode = "DECODE_FAILURE"            // account skipped
	ErrSourceUnavailable       ErrorCode = "SOURCE_UNAVAILABLE"        // source treated as empty
	ErrRecordDetailUnavailable ErrorCode = "RECORD_DETAIL_UNAVAILABLE" // signature kept, unclassified
	ErrClassificationAmbiguous ErrorCode = "CLASSIFICATION_AMBIGUOUS"  // fallback policy applied
	ErrFeedUnavailable         ErrorCode = "FEED_UNAVAILABLE"          // fiat estimate zeroed
	ErrInvalidRequest          ErrorCode = "INVALID_REQUEST"           // 400
	ErrNotFound                ErrorCode = "NOT_FOUND"                 // 404
	ErrAllSourcesFailed        ErrorCode = "ALL_SOURCES_FAILED"        // 503
)

// LucidError is a structured error carrying a taxonomy code.
type LucidError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LucidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LucidError) Unwrap() error {
	return e.Err
}

// NewDecodeFailure reports account bytes that do not decode as a capsule.
func NewDecodeFailure(address string, size int) *LucidError {
	return &LucidError{
		Code:    ErrDecodeFailure,
		Message: fmt.Sprintf("account %s (%d bytes) is not a capsule", address, size),
	}
}

// NewSourceUnavailable wraps a failure of a whole data source.
func NewSourceUnavailable(source string, err error) *LucidError {
	return &LucidError{
		Code:    ErrSourceUnavailable,
		Message: fmt.Sprintf("source %s unavailable", source),
		Err:     err,
	}
}

// NewRecordDetailUnavailable wraps a failed detail lookup for one signature.
func NewRecordDetailUnavailable(signature string, err error) *LucidError {
	return &LucidError{
		Code:    ErrRecordDetailUnavailable,
		Message: fmt.Sprintf("detail for %s unavailable", signature),
		Err:     err,
	}
}

// NewClassificationAmbiguous reports a program-related record with no decisive evidence.
func NewClassificationAmbiguous(signature string) *LucidError {
	return &LucidError{
		Code:    ErrClassificationAmbiguous,
		Message: fmt.Sprintf("could not classify %s", signature),
	}
}

// NewFeedUnavailable wraps a price feed failure.
func NewFeedUnavailable(err error) *LucidError {
	return &LucidError{
		Code:    ErrFeedUnavailable,
		Message: "price feed unavailable",
		Err:     err,
	}
}

// NewInvalidRequest creates an error for invalid request parameters.
func NewInvalidRequest(msg string) *LucidError {
	return &LucidError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a missing account or record.
func NewNotFound(identifier string) *LucidError {
	return &LucidError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("not found: %s", identifier),
	}
}

// NewAllSourcesFailed reports that no source produced data for a pass.
func NewAllSourcesFailed(wallet string, err error) *LucidError {
	return &LucidError{
		Code:    ErrAllSourcesFailed,
		Message: fmt.Sprintf("all sources failed for %s", wallet),
		Err:     err,
	}
}

// Is checks if err (or anything it wraps) is a LucidError with the given code.
func Is(err error, code ErrorCode) bool {
	var lErr *LucidError
	if stderrors.As(err, &lErr) {
		return lErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first LucidError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var lErr *LucidError
	if stderrors.As(err, &lErr) {
		return lErr.Code
	}
	return ""
}

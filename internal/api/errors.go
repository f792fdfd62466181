package api

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes client failures.
type ErrorCode string

const (
	// ErrCodeNetwork indicates the request could not be sent or no
	// response was received.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrCodeServer indicates a response with a non-success status.
	ErrCodeServer ErrorCode = "SERVER_ERROR"

	// ErrCodeMalformed indicates a response body that could not be
	// parsed as expected.
	ErrCodeMalformed ErrorCode = "MALFORMED_RESPONSE"
)

// Error is a classified failure from the alignment backend.
//
// Status carries the HTTP status text for server errors so the
// pipeline can surface it to the user; no response payload is
// retained on the error path.
type Error struct {
	Code     ErrorCode
	Endpoint string
	Status   string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Status != "":
		return fmt.Sprintf("%s: %s: %s (%s)", e.Code, e.Endpoint, e.Message, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Endpoint, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Endpoint, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is a transport-level failure.
// Uses errors.As to handle wrapped errors.
func IsNetworkError(err error) bool {
	return hasCode(err, ErrCodeNetwork)
}

// IsServerError reports whether err is a non-success response.
func IsServerError(err error) bool {
	return hasCode(err, ErrCodeServer)
}

// IsMalformedError reports whether err is an unparseable response.
// Treated identically to a server error for user display.
func IsMalformedError(err error) bool {
	return hasCode(err, ErrCodeMalformed)
}

func hasCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse   = errors.New("protocol: empty response")
	ErrResponseTooLong = errors.New("protocol: response exceeds size limit")
	ErrRequestTooLong  = errors.New("protocol: request exceeds size limit")
)

// ParseError reports a response stream that could not be split into
// header and body sections.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	if e == nil || e.Cause == nil {
		return "protocol: failed to parse MCTP response"
	}
	return fmt.Sprintf("protocol: failed to parse MCTP response: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func parseError(cause error) error {
	return &ParseError{Cause: cause}
}

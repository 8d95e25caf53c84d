package model

import (
	"errors"
	"fmt"
)

// UpstreamError means the exchange answered with success=false.
// Message is the exchange's text, unmodified. Callers may retry.
type UpstreamError struct {
	Endpoint string
	Market   string // Empty for listing endpoints
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Market == "" {
		return fmt.Sprintf("exchange %s failed: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("exchange %s %s failed: %s", e.Endpoint, e.Market, e.Message)
}

// MalformedDataError means a payload did not have the expected shape.
// It signals a model/version mismatch with the exchange and is not retryable.
type MalformedDataError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedDataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err wraps an *UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsMalformed reports whether err wraps a *MalformedDataError.
func IsMalformed(err error) bool {
	var me *MalformedDataError
	return errors.As(err, &me)
}

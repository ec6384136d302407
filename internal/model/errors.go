package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when no upstream API credential is available.
// The generation endpoint fails closed on it.
var ErrNotConfigured = errors.New("AI provider API key is not configured")

// ValidationError is a rejected generation request. No upstream call is made.
type ValidationError struct {
	Message string
	Err     error // underlying decode error, if any
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UpstreamError is a failed call to the LLM provider. Message carries the
// provider's own error text when it sent one.
type UpstreamError struct {
	StatusCode int // zero for transport failures
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("upstream HTTP %d: %s", e.StatusCode, e.Message)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("upstream HTTP %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream HTTP %d", e.StatusCode)
	case e.Message != "":
		return "upstream: " + e.Message
	case e.Err != nil:
		return fmt.Sprintf("upstream: %v", e.Err)
	}
	return "upstream error"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx answer from the generation endpoint whose body parsed.
// Message is the server-provided error text and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("generation endpoint returned HTTP %d", e.StatusCode)
}

// ParseError is a generation endpoint response that was not the expected JSON.
// Preview holds a bounded prefix of the raw body.
type ParseError struct {
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	return "Invalid response format: " + e.Preview + "..."
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UserInputError lists form fields that block generation.
type UserInputError struct {
	Fields []string
}

func (e *UserInputError) Error() string {
	return "missing or invalid form fields: " + strings.Join(e.Fields, ", ")
}

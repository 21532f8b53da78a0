package web

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest reports a URL or URI that cannot be sent
	ErrMalformedRequest = errors.New("malformed request")
	// ErrBodyConflict reports setting a raw body and form parameters on one request
	ErrBodyConflict = errors.New("request body and parameters are mutually exclusive")
	// ErrBodyNotAllowed reports a body on a method other than POST, PUT or PATCH
	ErrBodyNotAllowed = errors.New("request body not allowed for method")
	// ErrTransport reports a connection, TLS or timeout failure
	ErrTransport = errors.New("transport failure")
	// ErrTooManyRedirects reports an exhausted redirect budget
	ErrTooManyRedirects = errors.New("too many redirects")
)

// MalformedRequestError carries the offending input
type MalformedRequestError struct {
	Input  string
	Reason string
	Err    error
}

func (e *MalformedRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed request %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed request %q: %s", e.Input, e.Reason)
}

func (e *MalformedRequestError) Unwrap() error { return e.Err }

func (e *MalformedRequestError) Is(target error) bool { return target == ErrMalformedRequest }

// TransportError wraps a failed exchange
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// TooManyRedirectsError aborts a redirect chain
type TooManyRedirectsError struct {
	URL  string
	Hops int
}

func (e *TooManyRedirectsError) Error() string {
	return fmt.Sprintf("too many redirects for %s: gave up after %d hops", e.URL, e.Hops)
}

func (e *TooManyRedirectsError) Is(target error) bool { return target == ErrTooManyRedirects }

func malformed(input, reason string, err error) error {
	return &MalformedRequestError{Input: input, Reason: reason, Err: err}
}

package dahell

import (
	"errors"
	"fmt"
)

// ErrNilClient is returned when a method is called on a nil *Client.
var ErrNilClient = errors.New("client is nil")

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Method    string
	Path      string
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: execute request: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError means the backend answered with a status >= 400.
type ServerError struct {
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

// DecodeError means the response body did not match the expected shape.
type DecodeError struct {
	Path      string
	RequestID string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("api %s: decode response: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RequestIDOf extracts the request id carried by a client error, if any.
func RequestIDOf(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.RequestID
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.RequestID
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.RequestID
	}
	return ""
}

package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request never completed: DNS failure, refused
// connection, timeout or cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a non-2xx response. Message holds the server-supplied
// text and may be empty.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("API error: status %d: %s", e.StatusCode, e.Message)
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsService returns the ServiceError wrapped in err, if any.
func AsService(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var errBreakerOpen = &ServiceError{
	StatusCode: http.StatusServiceUnavailable,
	Message:    "Weather service is temporarily unavailable. Try again shortly.",
}

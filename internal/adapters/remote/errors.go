package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote calls.
var (
	ErrEncodeRequest = errors.New("remote: encode request")
	ErrBuildRequest  = errors.New("remote: build request")
	ErrDecodeReport  = errors.New("remote: decode report")
)

// HTTPError is returned for any non-2xx response. Body is the response text as received.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// IsHTTPError reports whether err is an *HTTPError and returns it.
func IsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

package externalApi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("error not found")
	ErrUnexpectedBody = errors.New("error unexpected response body")
)

// HttpError is returned for every non-2xx response.
type HttpError struct {
	StatusCode int
	Body       string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *HttpError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

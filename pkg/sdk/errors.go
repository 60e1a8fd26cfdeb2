package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the askdex API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("askdex api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("askdex api: %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 API response.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsBackendFailure reports whether err is a 502 API response, i.e. one of
// the search or generation backends failed rather than the API itself.
func IsBackendFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadGateway
}

package domain

import (
	"errors"
	"fmt"
)

// Service identifies which collaborator produced an error.
const (
	ServiceSearch     = "search"
	ServiceGeneration = "generation"
	ServiceCache      = "cache"
	ServicePipeline   = "pipeline"
	ServiceConfig     = "config"
)

var (
	// ErrConfiguration signals missing or invalid connection settings (fatal at construction).
	ErrConfiguration = errors.New("invalid configuration")
	// ErrSearchBackend signals that the search backend rejected or failed a query.
	ErrSearchBackend = errors.New("search backend error")
	// ErrGeneration signals that the generation backend rejected or failed a request.
	ErrGeneration = errors.New("generation backend error")
	// ErrNetwork signals a transport-level failure, as opposed to a backend-returned error.
	ErrNetwork = errors.New("network error")
	// ErrPipeline signals an invariant violation inside the orchestration itself.
	ErrPipeline = errors.New("pipeline error")
	// ErrUnauthorized signals a missing or invalid API credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// ServiceError tags a failure with its class and the service that produced it,
// so callers can render a message naming the failing collaborator.
type ServiceError struct {
	Service string
	Kind    error
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// Is matches the error class sentinel in addition to the wrapped chain.
func (e *ServiceError) Is(target error) bool { return target == e.Kind }

// NewSearchError classifies a search backend failure.
func NewSearchError(err error) error {
	return &ServiceError{Service: ServiceSearch, Kind: ErrSearchBackend, Err: err}
}

// NewGenerationError classifies a generation backend failure.
func NewGenerationError(err error) error {
	return &ServiceError{Service: ServiceGeneration, Kind: ErrGeneration, Err: err}
}

// NewNetworkError classifies a transport-level failure on the given service.
func NewNetworkError(service string, err error) error {
	return &ServiceError{Service: service, Kind: ErrNetwork, Err: err}
}

// NewPipelineError classifies an internal orchestration failure.
func NewPipelineError(err error) error {
	return &ServiceError{Service: ServicePipeline, Kind: ErrPipeline, Err: err}
}

// ServiceOf reports which service produced err, or "" when untagged.
func ServiceOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Service
	}
	return ""
}

package rag

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ConnectionReport is the outcome of the backend connectivity self-test.
type ConnectionReport struct {
	Search     bool
	Generation bool
	Errors     []string
}

// Healthy reports whether every backend probe passed.
func (r ConnectionReport) Healthy() bool { return r.Search && r.Generation }

// TestConnection probes the search and generation backends independently;
// one failing probe never hides the other's result.
func (s *Service) TestConnection(ctx context.Context) ConnectionReport {
	var report ConnectionReport

	if err := s.searcher.Ping(ctx); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("search: %v", err))
		s.logger.Warn("search connectivity probe failed", zap.Error(err))
	} else {
		report.Search = true
	}

	if err := s.checker.HealthCheck(ctx); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("generation: %v", err))
		s.logger.Warn("generation connectivity probe failed", zap.Error(err))
	} else {
		report.Generation = true
	}

	return report
}

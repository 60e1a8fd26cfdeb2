package rag

import "github.com/kailas-cloud/askdex/internal/domain/document"

// Confidence model. The mean retrieval score maps linearly into the clamp
// band; a normal completion earns the larger bonus, so a perfect mean of 10
// with a normal stop lands exactly on the ceiling. The fallback and
// no-results bands sit below the floor to signal reduced reliability.
const (
	confidenceFloor   = 0.30
	confidenceCeiling = 0.95
	scoreWeight       = 0.06
	finishedBonus     = 0.35
	truncatedBonus    = 0.15

	fallbackConfidence  = 0.25
	noResultsConfidence = 0.10
)

// scoreConfidence computes the bounded confidence for an answered query.
// The mean is taken over every retrieved document, not only the ones whose
// content reached the context.
func scoreConfidence(docs []document.Document, fallback, finished bool) float64 {
	if fallback {
		return fallbackConfidence
	}

	var sum float64
	for _, d := range docs {
		sum += d.Score()
	}
	mean := 0.0
	if len(docs) > 0 {
		mean = sum / float64(len(docs))
	}

	bonus := truncatedBonus
	if finished {
		bonus = finishedBonus
	}

	c := mean*scoreWeight + bonus
	if c < confidenceFloor {
		c = confidenceFloor
	}
	if c > confidenceCeiling {
		c = confidenceCeiling
	}
	return c
}

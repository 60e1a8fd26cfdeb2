// Package answer models the final result of one retrieval-augmented query.
package answer

import "github.com/kailas-cloud/askdex/internal/domain/document"

// Answer is the answer-with-citations result (immutable value object).
type Answer struct {
	response       string
	sources        []document.Source
	confidence     float64
	tokens         int
	processingTime float64
	model          string
}

// New creates an Answer. Sources must already be in retrieval rank order.
func New(
	response string, sources []document.Source, confidence float64,
	tokens int, processingTime float64, model string,
) Answer {
	return Answer{
		response:       response,
		sources:        sources,
		confidence:     confidence,
		tokens:         tokens,
		processingTime: processingTime,
		model:          model,
	}
}

// Response returns the generated answer text.
func (a Answer) Response() string { return a.response }

// Sources returns the citations in retrieval rank order.
func (a Answer) Sources() []document.Source { return a.sources }

// Confidence returns the bounded reliability estimate in [0,1].
func (a Answer) Confidence() float64 { return a.confidence }

// Tokens returns the token count reported by the generation backend.
func (a Answer) Tokens() int { return a.tokens }

// ProcessingTime returns the wall-clock pipeline duration in seconds.
func (a Answer) ProcessingTime() float64 { return a.processingTime }

// Model returns the model identifier used ("none" on the zero-hit path).
func (a Answer) Model() string { return a.model }

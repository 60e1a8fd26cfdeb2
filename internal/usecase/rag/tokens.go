package rag

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackBytesPerToken = 4

// Estimator approximates prompt token counts for logs and metrics. It never
// replaces the backend-reported usage in results. The encoding is resolved
// lazily on first use; when none can be loaded the estimate degrades to a
// bytes/4 heuristic.
type Estimator struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewEstimator creates a token estimator for the given model.
func NewEstimator(model string) *Estimator {
	return &Estimator{model: model}
}

// Count estimates the token count of text.
func (e *Estimator) Count(text string) int {
	e.once.Do(e.load)
	if e.enc == nil {
		return len(text) / fallbackBytesPerToken
	}
	return len(e.enc.Encode(text, nil, nil))
}

func (e *Estimator) load() {
	enc, err := tiktoken.EncodingForModel(e.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return
		}
	}
	e.enc = enc
}

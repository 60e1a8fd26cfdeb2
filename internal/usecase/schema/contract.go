package schema

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/index"
)

// Prober issues probe queries against the document index.
type Prober interface {
	Search(ctx context.Context, q *index.Query) (*index.Result, error)
}

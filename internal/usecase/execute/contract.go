package execute

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/synthsearch/internal/domain/query"
)

// Translator turns a question into a query object.
type Translator interface {
	Translate(ctx context.Context, collection, question, library string) (query.Object, error)
}

// Querier runs a query object against a live collection.
type Querier interface {
	Query(ctx context.Context, database, collection string, q query.Object) ([]json.RawMessage, error)
}

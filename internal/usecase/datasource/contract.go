package datasource

import (
	"context"

	"github.com/kailas-cloud/synthsearch/internal/domain/profile"
	"github.com/kailas-cloud/synthsearch/internal/repository/contextindex"
)

// Describer introspects a live collection.
type Describer interface {
	Describe(ctx context.Context, database, collection, dbType string) (profile.Profile, error)
}

// ContextIndex stores and searches rendered profiles.
type ContextIndex interface {
	Upsert(ctx context.Context, key, text string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Search(ctx context.Context, text string, k int) ([]contextindex.Match, error)
}

package source

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kailas-cloud/synthsearch/internal/domain"
	"github.com/kailas-cloud/synthsearch/internal/domain/profile"
	"github.com/kailas-cloud/synthsearch/internal/domain/query"
)

// store is the consumer interface over the document database (ISP).
type store interface {
	FindOne(ctx context.Context, database, collection string) (bson.D, bool, error)
	Count(ctx context.Context, database, collection string) (int64, error)
	Sample(ctx context.Context, database, collection string, size int) ([]bson.D, error)
	Find(ctx context.Context, database, collection string, filter bson.D) ([]bson.D, error)
}

// Repo introspects and queries collections of the connected deployment.
type Repo struct {
	store store
}

// New creates a source repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Describe builds the profile of a collection from its first document,
// its document count and a random sample.
func (r *Repo) Describe(ctx context.Context, database, collection, dbType string) (profile.Profile, error) {
	p := profile.Profile{Database: database, Collection: collection, DBType: dbType}

	first, found, err := r.store.FindOne(ctx, database, collection)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w: read first document: %w", domain.ErrStore, err)
	}
	if found {
		p.Schema = make([]profile.Field, 0, len(first))
		for _, e := range first {
			p.Schema = append(p.Schema, profile.Field{Name: e.Key, Value: TypeName(e.Value)})
		}
	}

	if p.Count, err = r.store.Count(ctx, database, collection); err != nil {
		return profile.Profile{}, fmt.Errorf("%w: count documents: %w", domain.ErrStore, err)
	}

	samples, err := r.store.Sample(ctx, database, collection, profile.MaxSamples)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w: sample documents: %w", domain.ErrStore, err)
	}
	for _, doc := range samples {
		fields := make([]profile.Field, 0, len(doc))
		for _, e := range doc {
			fields = append(fields, profile.Field{Name: e.Key, Value: FormatValue(e.Value)})
		}
		p.Samples = append(p.Samples, fields)
	}

	return p, nil
}

// Query runs q as a find filter and returns matches as relaxed Extended JSON.
// Text queries are decoded first; undecodable text yields domain.ErrParse.
func (r *Repo) Query(ctx context.Context, database, collection string, q query.Object) ([]json.RawMessage, error) {
	filter, err := Filter(q)
	if err != nil {
		return nil, err
	}

	docs, err := r.store.Find(ctx, database, collection, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: find: %w", domain.ErrStore, err)
	}

	out := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		b, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return nil, fmt.Errorf("%w: encode document: %w", domain.ErrStore, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Filter decodes a query object into a find filter. Extended JSON operators
// such as {"$oid": ...} and {"$date": ...} are honored.
func Filter(q query.Object) (bson.D, error) {
	raw, err := q.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}
	var filter bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &filter); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}
	return filter, nil
}

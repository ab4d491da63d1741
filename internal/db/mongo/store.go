package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/synthsearch/internal/db"
	"github.com/kailas-cloud/synthsearch/internal/domain"
)

// Op names the driver call that failed.
const (
	OpFindOne   = "findOne"
	OpCount     = "countDocuments"
	OpAggregate = "aggregate"
	OpFind      = "find"
)

// Config holds connection parameters for the document store.
type Config struct {
	URL            string
	AppName        string
	ConnectTimeout time.Duration
}

// Store is a long-lived handle to a MongoDB deployment.
type Store struct {
	client *mongo.Client
}

// Connect dials the deployment and verifies it answers a ping.
// A malformed URL or unreachable server yields domain.ErrConnection.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: database url is required", domain.ErrConnection)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}

	s := &Store{client: client}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}
	return s, nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Disconnect closes every pooled connection.
func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FindOne returns the first document in natural order, with fields in stored order.
// found is false for an empty collection.
func (s *Store) FindOne(ctx context.Context, database, collection string) (bson.D, bool, error) {
	var doc bson.D
	err := s.coll(database, collection).FindOne(ctx, bson.D{}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &db.Error{Op: OpFindOne, Err: err}
	}
	return doc, true, nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context, database, collection string) (int64, error) {
	n, err := s.coll(database, collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, &db.Error{Op: OpCount, Err: err}
	}
	return n, nil
}

// Sample returns up to size documents chosen with $sample.
func (s *Store) Sample(ctx context.Context, database, collection string, size int) ([]bson.D, error) {
	pipeline := mongo.Pipeline{{{Key: "$sample", Value: bson.D{{Key: "size", Value: size}}}}}
	cur, err := s.coll(database, collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &db.Error{Op: OpAggregate, Err: err}
	}
	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: OpAggregate, Err: err}
	}
	return docs, nil
}

// Find returns every document matching filter in natural order.
func (s *Store) Find(ctx context.Context, database, collection string, filter bson.D) ([]bson.D, error) {
	if filter == nil {
		filter = bson.D{}
	}
	cur, err := s.coll(database, collection).Find(ctx, filter)
	if err != nil {
		return nil, &db.Error{Op: OpFind, Err: err}
	}
	docs := make([]bson.D, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: OpFind, Err: err}
	}
	return docs, nil
}

func (s *Store) coll(database, collection string) *mongo.Collection {
	return s.client.Database(database).Collection(collection)
}

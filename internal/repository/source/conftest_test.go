package source

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	findOneFn func(ctx context.Context, database, collection string) (bson.D, bool, error)
	countFn   func(ctx context.Context, database, collection string) (int64, error)
	sampleFn  func(ctx context.Context, database, collection string, size int) ([]bson.D, error)
	findFn    func(ctx context.Context, database, collection string, filter bson.D) ([]bson.D, error)
}

func (m *mockStore) FindOne(ctx context.Context, database, collection string) (bson.D, bool, error) {
	if m.findOneFn != nil {
		return m.findOneFn(ctx, database, collection)
	}
	return nil, false, nil
}

func (m *mockStore) Count(ctx context.Context, database, collection string) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, database, collection)
	}
	return 0, nil
}

func (m *mockStore) Sample(ctx context.Context, database, collection string, size int) ([]bson.D, error) {
	if m.sampleFn != nil {
		return m.sampleFn(ctx, database, collection, size)
	}
	return nil, nil
}

func (m *mockStore) Find(ctx context.Context, database, collection string, filter bson.D) ([]bson.D, error) {
	if m.findFn != nil {
		return m.findFn(ctx, database, collection, filter)
	}
	return []bson.D{}, nil
}

// ordersStore serves a three-document "orders" collection.
func ordersStore() *mockStore {
	docs := []bson.D{
		{{Key: "id", Value: int32(1)}, {Key: "user", Value: "p"}},
		{{Key: "id", Value: int32(2)}, {Key: "user", Value: "q"}},
		{{Key: "id", Value: int32(3)}, {Key: "user", Value: "p"}},
	}
	return &mockStore{
		findOneFn: func(context.Context, string, string) (bson.D, bool, error) {
			return docs[0], true, nil
		},
		countFn: func(context.Context, string, string) (int64, error) {
			return int64(len(docs)), nil
		},
		sampleFn: func(_ context.Context, _, _ string, size int) ([]bson.D, error) {
			return docs[:min(size, len(docs))], nil
		},
	}
}

package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/kailas-cloud/synthsearch/internal/db"
	"github.com/kailas-cloud/synthsearch/internal/domain"
)

const ns = "shop.orders"

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find one keeps field order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "id", Value: int32(1)}, {Key: "user", Value: "p"}}))

		doc, found, err := NewStoreForTest(mt.Client).FindOne(context.Background(), "shop", "orders")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if !found {
			mt.Fatal("expected a document")
		}
		if len(doc) != 2 || doc[0].Key != "id" || doc[1].Key != "user" {
			mt.Errorf("unexpected document: %v", doc)
		}
	})

	mt.Run("find one on empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, found, err := NewStoreForTest(mt.Client).FindOne(context.Background(), "shop", "orders")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if found {
			mt.Error("expected no document")
		}
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		n, err := NewStoreForTest(mt.Client).Count(context.Background(), "shop", "orders")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if n != 3 {
			mt.Errorf("count = %d, want 3", n)
		}
	})

	mt.Run("sample", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "id", Value: int32(2)}},
			bson.D{{Key: "id", Value: int32(3)}},
		))

		docs, err := NewStoreForTest(mt.Client).Sample(context.Background(), "shop", "orders", 5)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 2 {
			mt.Errorf("expected 2 samples, got %d", len(docs))
		}
	})

	mt.Run("find", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "id", Value: int32(1)}, {Key: "user", Value: "p"}}))

		filter := bson.D{{Key: "user", Value: "p"}}
		docs, err := NewStoreForTest(mt.Client).Find(context.Background(), "shop", "orders", filter)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 1 {
			mt.Fatalf("expected 1 document, got %d", len(docs))
		}
	})

	mt.Run("find with no match returns empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		docs, err := NewStoreForTest(mt.Client).Find(context.Background(), "shop", "orders", nil)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if docs == nil || len(docs) != 0 {
			mt.Errorf("expected empty non-nil slice, got %v", docs)
		}
	})

	mt.Run("find server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "unknown operator: $bogus",
		}))

		_, err := NewStoreForTest(mt.Client).Find(context.Background(), "shop", "orders",
			bson.D{{Key: "$bogus", Value: 1}})
		var dbErr *db.Error
		if !errors.As(err, &dbErr) {
			mt.Fatalf("expected db.Error, got %v", err)
		}
		if dbErr.Op != OpFind {
			mt.Errorf("op = %q, want %q", dbErr.Op, OpFind)
		}
	})
}

func TestConnect_MalformedURL(t *testing.T) {
	_, err := Connect(context.Background(), Config{URL: "not-a-mongo-url"})
	if !errors.Is(err, domain.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestConnect_EmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	if !errors.Is(err, domain.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

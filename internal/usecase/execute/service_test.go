package execute

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kailas-cloud/synthsearch/internal/domain"
	"github.com/kailas-cloud/synthsearch/internal/domain/query"
	"github.com/kailas-cloud/synthsearch/internal/repository/source"
	"github.com/kailas-cloud/synthsearch/internal/usecase/translate"
)

// --- Mocks ---

type mockTranslator struct {
	q   query.Object
	err error
}

func (m *mockTranslator) Translate(_ context.Context, _, _, _ string) (query.Object, error) {
	return m.q, m.err
}

type mockQuerier struct {
	docs   []json.RawMessage
	err    error
	called bool
}

func (m *mockQuerier) Query(_ context.Context, _, _ string, _ query.Object) ([]json.RawMessage, error) {
	m.called = true
	return m.docs, m.err
}

// ordersStore serves a single collection and applies equality filters.
type ordersStore struct {
	docs    []bson.D
	findErr error
}

func (s *ordersStore) FindOne(_ context.Context, _, _ string) (bson.D, bool, error) {
	if len(s.docs) == 0 {
		return nil, false, nil
	}
	return s.docs[0], true, nil
}

func (s *ordersStore) Count(_ context.Context, _, _ string) (int64, error) {
	return int64(len(s.docs)), nil
}

func (s *ordersStore) Sample(_ context.Context, _, _ string, size int) ([]bson.D, error) {
	return s.docs[:min(size, len(s.docs))], nil
}

func (s *ordersStore) Find(_ context.Context, _, _ string, filter bson.D) ([]bson.D, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := []bson.D{}
	for _, doc := range s.docs {
		if matches(doc.Map(), filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func matches(doc bson.M, filter bson.D) bool {
	for _, e := range filter {
		if doc[e.Key] != e.Value {
			return false
		}
	}
	return true
}

type contexts map[string]string

func (c contexts) Get(_ context.Context, key string) (string, bool, error) {
	t, ok := c[key]
	return t, ok, nil
}

type cannedLLM string

func (c cannedLLM) Complete(_ context.Context, _ string) (string, error) {
	return string(c), nil
}

func newOrders() *ordersStore {
	return &ordersStore{docs: []bson.D{
		{{Key: "id", Value: int32(1)}, {Key: "user", Value: "p"}},
		{{Key: "id", Value: int32(2)}, {Key: "user", Value: "q"}},
		{{Key: "id", Value: int32(3)}, {Key: "user", Value: "p"}},
	}}
}

// --- Tests ---

func TestRun_Orders(t *testing.T) {
	store := newOrders()
	repo := source.New(store)

	p, err := repo.Describe(context.Background(), "shop", "orders", "mongodb")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	ctxs := contexts{"orders": p.Render()}

	tr := translate.New(ctxs, cannedLLM("```json\n{\"user\": \"p\"}\n```"), nil)
	svc := New(tr, repo, nil)

	res, err := svc.Run(context.Background(), "shop", "orders", "orders by p", "pymongo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(res.Documents))
	}
	for _, raw := range res.Documents {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			t.Fatalf("decode document: %v", err)
		}
		if doc["user"] != "p" {
			t.Errorf("unexpected document %s", raw)
		}
	}
	if res.Query.IsText() {
		t.Error("expected structured query")
	}
}

func TestRun_NoMatches(t *testing.T) {
	repo := source.New(newOrders())
	tr := translate.New(contexts{"orders": "ctx"}, cannedLLM(`{"user": "zzz"}`), nil)
	svc := New(tr, repo, nil)

	res, err := svc.Run(context.Background(), "shop", "orders", "orders by zzz", "pymongo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Documents == nil || len(res.Documents) != 0 {
		t.Errorf("expected empty non-nil result, got %v", res.Documents)
	}
}

func TestRun_TextQueryNotJSON(t *testing.T) {
	repo := source.New(newOrders())
	tr := translate.New(contexts{"orders": "ctx"}, cannedLLM("db.orders.find()"), nil)
	svc := New(tr, repo, nil)

	_, err := svc.Run(context.Background(), "shop", "orders", "everything", "pymongo")
	if !errors.Is(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestRun_UnknownCollection(t *testing.T) {
	q := &mockQuerier{}
	svc := New(&mockTranslator{err: domain.NewNotFound("ghost")}, q, nil)

	_, err := svc.Run(context.Background(), "shop", "ghost", "x", "pymongo")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if q.called {
		t.Error("store must not be queried when translation fails")
	}
}

func TestRun_StoreError(t *testing.T) {
	q := &mockQuerier{err: domain.ErrStore}
	svc := New(&mockTranslator{q: query.Structured(map[string]any{})}, q, nil)

	_, err := svc.Run(context.Background(), "shop", "orders", "x", "pymongo")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestRun_DatabaseRequired(t *testing.T) {
	tr := &mockTranslator{q: query.Structured(map[string]any{})}
	q := &mockQuerier{}
	svc := New(tr, q, nil)

	for _, db := range []string{"", "  "} {
		_, err := svc.Run(context.Background(), db, "orders", "x", "pymongo")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("database %q: expected ErrValidation, got %v", db, err)
		}
	}
	if q.called {
		t.Error("store must not be queried without a database")
	}
}

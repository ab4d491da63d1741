package contextindex

import (
	"context"
	"strings"

	"github.com/kailas-cloud/synthsearch/internal/db"
	"github.com/kailas-cloud/synthsearch/internal/domain"
)

const testDim = 3

// memStore is a hash-backed fake of the consumer interface.
type memStore struct {
	hashes        map[string]map[string]string
	indexes       map[string]*db.IndexDefinition
	hsetErr       error
	hgetAllErr    error
	scanErr       error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexErr  error
	searchFn      func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func newMemStore() *memStore {
	return &memStore{
		hashes:  map[string]map[string]string{},
		indexes: map[string]*db.IndexDefinition{},
	}
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.hgetAllErr != nil {
		return nil, m.hgetAllErr
	}
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	delete(m.hashes, key)
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *memStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	m.indexes[def.Name] = def
	return nil
}

func (m *memStore) DropIndex(_ context.Context, name string) error {
	if m.dropIndexErr != nil {
		return m.dropIndexErr
	}
	if _, ok := m.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(m.indexes, name)
	return nil
}

func (m *memStore) IndexExists(_ context.Context, name string) (bool, error) {
	_, ok := m.indexes[name]
	return ok, nil
}

func (m *memStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.vec}, nil
}

func newTestRepo() (*Repo, *memStore) {
	s := newMemStore()
	return New(s, &stubEmbedder{vec: []float32{0.1, 0.2, 0.3}}, "", testDim), s
}

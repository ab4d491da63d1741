package contextindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/synthsearch/internal/db"
	"github.com/kailas-cloud/synthsearch/internal/domain"
)

const (
	fieldName      = "name"
	fieldContent   = "content"
	fieldVector    = db.DefaultVectorField
	fieldUpdatedAt = "updated_at"
)

// store is the consumer interface for the context index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Match is a registered collection ranked by similarity to a question.
type Match struct {
	Collection string
	Score      float64
}

// Repo stores collection profiles as embedded hashes under a key prefix.
type Repo struct {
	store     store
	embedder  domain.Embedder
	prefix    string
	dimension int
	hnsw      HNSWConfig
	now       func() time.Time
}

// New creates a context index repository. prefix defaults to domain.KeyPrefix.
func New(s store, embedder domain.Embedder, prefix string, dimension int) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{
		store:     s,
		embedder:  embedder,
		prefix:    prefix,
		dimension: dimension,
		hnsw:      HNSWConfig{M: 16, EFConstruct: 200},
		now:       time.Now,
	}
}

// WithHNSW overrides HNSW parameters; zero values keep the defaults.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the FT index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("%w: probe index: %w", domain.ErrStore, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.indexName()).
		Prefix(r.keyPrefix()).
		Tag(fieldName).
		Numeric(fieldUpdatedAt).
		VectorHNSW(fieldVector, r.dimension, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("%w: create index: %w", domain.ErrStore, err)
	}
	return nil
}

// RebuildIndex drops the FT index and creates it again with the current
// dimension and HNSW settings. Stored entries are kept and reindexed by the server.
func (r *Repo) RebuildIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%w: drop index: %w", domain.ErrStore, err)
	}
	return r.EnsureIndex(ctx)
}

// Upsert stores text under key, replacing any previous entry.
func (r *Repo) Upsert(ctx context.Context, key, text string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is required", domain.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is empty", domain.ErrValidation)
	}

	emb, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("%w: embed context: %w", domain.ErrStore, err)
	}
	if len(emb.Embedding) != r.dimension {
		return fmt.Errorf("%w: embedding has %d dimensions, index expects %d",
			domain.ErrStore, len(emb.Embedding), r.dimension)
	}

	fields := map[string]string{
		fieldName:      key,
		fieldContent:   text,
		fieldVector:    db.EncodeVector(emb.Embedding),
		fieldUpdatedAt: strconv.FormatInt(r.now().UnixMilli(), 10),
	}
	if err := r.store.HSet(ctx, r.entryKey(key), fields); err != nil {
		return fmt.Errorf("%w: write context: %w", domain.ErrStore, err)
	}
	return nil
}

// Get returns the text stored under key. found is false for a key never upserted.
func (r *Repo) Get(ctx context.Context, key string) (string, bool, error) {
	m, err := r.store.HGetAll(ctx, r.entryKey(key))
	if err != nil {
		return "", false, fmt.Errorf("%w: read context: %w", domain.ErrStore, err)
	}
	text, ok := m[fieldContent]
	if !ok {
		return "", false, nil
	}
	return text, true, nil
}

// Delete removes the entry under key. Missing keys yield domain.ErrNotFound.
func (r *Repo) Delete(ctx context.Context, key string) error {
	k := r.entryKey(key)
	exists, err := r.store.Exists(ctx, k)
	if err != nil {
		return fmt.Errorf("%w: check context: %w", domain.ErrStore, err)
	}
	if !exists {
		return domain.NewNotFound(key)
	}
	if err := r.store.Del(ctx, k); err != nil {
		return fmt.Errorf("%w: delete context: %w", domain.ErrStore, err)
	}
	return nil
}

// List returns every registered key in lexical order.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.keyPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("%w: scan contexts: %w", domain.ErrStore, err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, r.keyPrefix()))
	}
	sort.Strings(names)
	return names, nil
}

// Search ranks registered collections by similarity to text.
func (r *Repo) Search(ctx context.Context, text string, k int) ([]Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrValidation)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrValidation)
	}

	emb, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrStore, err)
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		VectorField:  fieldVector,
		Vector:       emb.Embedding,
		K:            k,
		ReturnFields: []string{fieldName},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search contexts: %w", domain.ErrStore, err)
	}

	matches := make([]Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		name := e.Fields[fieldName]
		if name == "" {
			name = strings.TrimPrefix(e.Key, r.keyPrefix())
		}
		matches = append(matches, Match{Collection: name, Score: e.Score})
	}
	return matches, nil
}

func (r *Repo) keyPrefix() string {
	return r.prefix + "context:"
}

func (r *Repo) entryKey(key string) string {
	return r.keyPrefix() + key
}

func (r *Repo) indexName() string {
	return r.prefix + "context:idx"
}

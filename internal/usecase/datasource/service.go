package datasource

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synthsearch/internal/domain"
	"github.com/kailas-cloud/synthsearch/internal/repository/contextindex"
)

// Search limits.
const (
	DefaultSearchLimit = 3
	MaxSearchLimit     = 50
)

// Service registers data sources and manages their stored profiles.
type Service struct {
	source Describer
	index  ContextIndex
	logger *zap.Logger
}

// New creates a data source service.
func New(source Describer, index ContextIndex, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, index: index, logger: logger}
}

// Register describes database.collection and stores the rendered profile under
// the collection name, replacing any earlier registration. It returns the profile text.
func (s *Service) Register(ctx context.Context, database, collection, dbType string) (string, error) {
	if strings.TrimSpace(database) == "" || strings.TrimSpace(collection) == "" {
		return "", fmt.Errorf("%w: database and collection names are required", domain.ErrValidation)
	}

	p, err := s.source.Describe(ctx, database, collection, dbType)
	if err != nil {
		return "", fmt.Errorf("describe collection: %w", err)
	}
	text := p.Render()

	s.logger.Info("Persisting collection context",
		zap.String("database", database),
		zap.String("collection", collection),
		zap.Int64("documents", p.Count),
		zap.Bool("empty", p.IsEmpty()),
	)
	if err := s.index.Upsert(ctx, collection, text); err != nil {
		return "", fmt.Errorf("store context: %w", err)
	}
	return text, nil
}

// Profile returns the stored profile text for collection.
func (s *Service) Profile(ctx context.Context, collection string) (string, error) {
	text, found, err := s.index.Get(ctx, collection)
	if err != nil {
		return "", fmt.Errorf("get context: %w", err)
	}
	if !found {
		return "", domain.NewNotFound(collection)
	}
	return text, nil
}

// List returns the names of all registered collections.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.index.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contexts: %w", err)
	}
	return names, nil
}

// Search ranks registered collections by similarity to text.
func (s *Service) Search(ctx context.Context, text string, limit int) ([]contextindex.Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: search text is required", domain.ErrValidation)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, MaxSearchLimit)
	}

	matches, err := s.index.Search(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("search contexts: %w", err)
	}
	return matches, nil
}

// Delete removes a registered collection's profile.
func (s *Service) Delete(ctx context.Context, collection string) error {
	if err := s.index.Delete(ctx, collection); err != nil {
		return fmt.Errorf("delete context: %w", err)
	}
	s.logger.Info("Removed collection context", zap.String("collection", collection))
	return nil
}

package execute

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synthsearch/internal/domain"
	"github.com/kailas-cloud/synthsearch/internal/domain/query"
)

// Result carries the generated query next to the documents it matched.
type Result struct {
	Query     query.Object
	Documents []json.RawMessage
}

// Service answers questions with documents from the live store.
type Service struct {
	translator Translator
	source     Querier
	logger     *zap.Logger
}

// New creates an execution service.
func New(translator Translator, source Querier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{translator: translator, source: source, logger: logger}
}

// Run translates question for collection and executes the result against database.collection.
// An empty document list means nothing matched; every failure is returned.
func (s *Service) Run(ctx context.Context, database, collection, question, library string) (Result, error) {
	if strings.TrimSpace(database) == "" {
		return Result{}, fmt.Errorf("%w: database is required", domain.ErrValidation)
	}

	q, err := s.translator.Translate(ctx, collection, question, library)
	if err != nil {
		return Result{}, fmt.Errorf("translate: %w", err)
	}

	if b, err := q.MarshalJSON(); err == nil {
		s.logger.Info("Generated query",
			zap.String("collection", collection),
			zap.ByteString("query", b),
		)
	}

	docs, err := s.source.Query(ctx, database, collection, q)
	if err != nil {
		s.logger.Warn("Query execution failed", zap.String("collection", collection), zap.Error(err))
		return Result{Query: q}, fmt.Errorf("execute query: %w", err)
	}
	return Result{Query: q, Documents: docs}, nil
}

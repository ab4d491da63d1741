package translate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synthsearch/internal/domain"
	"github.com/kailas-cloud/synthsearch/internal/domain/query"
	"github.com/kailas-cloud/synthsearch/internal/logger"
	"github.com/kailas-cloud/synthsearch/internal/metrics"
)

// Service turns natural-language questions into query objects.
type Service struct {
	contexts ContextReader
	llm      Completer
	logger   *zap.Logger
}

// New creates a translation service.
func New(contexts ContextReader, llm Completer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{contexts: contexts, llm: llm, logger: log}
}

// Translate asks the model for a query over collection in the vocabulary of library.
// Output that is not a JSON mapping or list comes back as a text object.
func (s *Service) Translate(ctx context.Context, collection, question, library string) (query.Object, error) {
	log := s.log(ctx).With(zap.String("collection", collection))

	if strings.TrimSpace(collection) == "" {
		return query.Object{}, fmt.Errorf("%w: collection name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(question) == "" {
		return query.Object{}, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}

	profileText, found, err := s.contexts.Get(ctx, collection)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		return query.Object{}, fmt.Errorf("load context: %w", err)
	}
	if !found {
		metrics.TranslationsTotal.WithLabelValues("not_found").Inc()
		return query.Object{}, domain.NewNotFound(collection)
	}

	raw, err := s.llm.Complete(ctx, BuildPrompt(collection, library, profileText, question))
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		log.Error("Could not query language model", zap.Error(err))
		return query.Object{}, fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}

	if query.Clean(raw) == "" {
		metrics.TranslationsTotal.WithLabelValues("error").Inc()
		log.Warn("Language model returned an empty query")
		return query.Object{}, fmt.Errorf("%w: empty model response", domain.ErrTranslation)
	}

	q := query.Parse(raw)
	metrics.TranslationsTotal.WithLabelValues(string(q.Kind())).Inc()
	log.Info("Generated query", zap.String("kind", string(q.Kind())))
	return q, nil
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

package chi

import (
	"context"

	"github.com/kailas-cloud/synthsearch/internal/domain/query"
	"github.com/kailas-cloud/synthsearch/internal/repository/contextindex"
	executeuc "github.com/kailas-cloud/synthsearch/internal/usecase/execute"
	healthuc "github.com/kailas-cloud/synthsearch/internal/usecase/health"
)

// Greeter answers the liveness prompt on the root route.
type Greeter interface {
	Greet(ctx context.Context) (string, error)
}

// DataSources registers and manages collection profiles.
type DataSources interface {
	Register(ctx context.Context, database, collection, dbType string) (string, error)
	Profile(ctx context.Context, collection string) (string, error)
	List(ctx context.Context) ([]string, error)
	Search(ctx context.Context, text string, limit int) ([]contextindex.Match, error)
	Delete(ctx context.Context, collection string) error
}

// Translator turns questions into query objects.
type Translator interface {
	Translate(ctx context.Context, collection, question, library string) (query.Object, error)
}

// Executor answers questions with documents.
type Executor interface {
	Run(ctx context.Context, database, collection, question, library string) (executeuc.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

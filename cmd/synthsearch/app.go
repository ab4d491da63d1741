package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/synthsearch/internal/config"
	dbMongo "github.com/kailas-cloud/synthsearch/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/synthsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/synthsearch/internal/logger"
	"github.com/kailas-cloud/synthsearch/internal/metrics"
	"github.com/kailas-cloud/synthsearch/internal/repository/contextindex"
	"github.com/kailas-cloud/synthsearch/internal/repository/embcache"
	"github.com/kailas-cloud/synthsearch/internal/repository/source"
	ollamaLLM "github.com/kailas-cloud/synthsearch/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/synthsearch/internal/transport/openai"
	datasourceuc "github.com/kailas-cloud/synthsearch/internal/usecase/datasource"
	executeuc "github.com/kailas-cloud/synthsearch/internal/usecase/execute"
	healthuc "github.com/kailas-cloud/synthsearch/internal/usecase/health"
	translateuc "github.com/kailas-cloud/synthsearch/internal/usecase/translate"
	"github.com/kailas-cloud/synthsearch/internal/version"
)

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	store *dbRedis.Store
	docs  *dbMongo.Store
	llm   *ollamaLLM.Client

	contexts *contextindex.Repo

	dataSources *datasourceuc.Service
	translator  *translateuc.Service
	executor    *executeuc.Service
	health      *healthuc.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Strings("context_index_addrs", cfg.ContextIndex.Addrs),
	)

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	// Context index store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.ContextIndex.Addrs,
		Password: cfg.ContextIndex.Password,
	})
	if err != nil {
		return fmt.Errorf("create context index store: %w", err)
	}
	a.store = store

	readiness := time.Duration(cfg.ContextIndex.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("context index store not ready: %w", err)
	}
	a.logger.Info("Connected to context index store")

	// Document store, held for the process lifetime
	docs, err := dbMongo.Connect(ctx, dbMongo.Config{
		URL:            cfg.Database.URL,
		AppName:        cfg.App.Name,
		ConnectTimeout: time.Duration(cfg.Database.ConnectTimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect document store: %w", err)
	}
	a.docs = docs
	a.logger.Info("Connected to document store")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterHTTPMetrics()

	// Embedder chain: OpenAI-compatible endpoint -> Redis cache -> in-process LRU
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     a.logger,
	})
	cached := embcache.New(
		base, store, cfg.Embedding.Model,
		time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal, a.logger,
	)
	embedder := embcache.WrapLRU(cached, cfg.Embedding.Model,
		cfg.Embedding.LRUSize, time.Duration(cfg.Embedding.LRUTTLSec)*time.Second)

	llm, err := ollamaLLM.New(ollamaLLM.Config{
		BaseURL: cfg.LLM.BaseURL,
		Params:  cfg.LLM.ModelParams(),
		Timeout: cfg.LLM.Timeout(),
		Logger:  a.logger,
	})
	if err != nil {
		return fmt.Errorf("create language model client: %w", err)
	}
	a.llm = llm

	// Repositories
	contexts := contextindex.New(store, embedder, cfg.ContextIndex.KeyPrefix, cfg.Embedding.Dimensions).
		WithHNSW(contextindex.HNSWConfig{
			M:           cfg.ContextIndex.HNSWM,
			EFConstruct: cfg.ContextIndex.HNSWEFConstruct,
		})
	if err := contexts.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure context index: %w", err)
	}
	a.contexts = contexts
	sources := source.New(docs)

	// Use cases
	a.dataSources = datasourceuc.New(sources, contexts, a.logger)
	a.translator = translateuc.New(contexts, llm, a.logger)
	a.executor = executeuc.New(a.translator, sources, a.logger)
	a.health = healthuc.New(store, docs, llm, base)
	return nil
}

func (a *app) close() {
	if a.docs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.docs.Disconnect(ctx); err != nil {
			a.logger.Warn("Document store disconnect failed", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

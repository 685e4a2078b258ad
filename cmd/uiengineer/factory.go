package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/uiengineer/internal/config"
	"github.com/aretw0/uiengineer/pkg/adapters/bolt"
	"github.com/aretw0/uiengineer/pkg/adapters/file"
	"github.com/aretw0/uiengineer/pkg/adapters/llm"
	"github.com/aretw0/uiengineer/pkg/adapters/memory"
	redisadapter "github.com/aretw0/uiengineer/pkg/adapters/redis"
	"github.com/aretw0/uiengineer/pkg/adapters/sqlite"
	"github.com/aretw0/uiengineer/pkg/adapters/static"
	"github.com/aretw0/uiengineer/pkg/app"
	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/observability"
	"github.com/aretw0/uiengineer/pkg/persistence/middleware"
	"github.com/aretw0/uiengineer/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// stack is everything a command needs, built from the configuration.
type stack struct {
	Service *app.Service
	Metrics *observability.Metrics
	// Changes reports app identifiers whose tree changed.
	Changes ports.Watchable

	closers []io.Closer
}

// Close releases stores and clients in reverse order of creation.
func (s *stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

func buildStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	st := &stack{Metrics: observability.NewMetrics()}

	raw, err := st.openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	store, err := wrapStore(raw, cfg.Store, st.Metrics, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	hooks := []domain.LifecycleHooks{st.Metrics.Hooks(), observability.LoggingHooks(logger)}
	changes := observability.NewAggregator()
	if w, ok := raw.(ports.Watchable); ok {
		// The backend announces changes itself, including other replicas'.
		changes.AddWatcher(w)
	} else {
		notifier := observability.NewNotifier()
		changes.AddWatcher(notifier)
		hooks = append(hooks, notifier.Hooks())
	}
	st.Changes = changes

	opts := []app.Option{
		app.WithHooks(observability.CombineHooks(hooks...)),
		app.WithLogger(logger),
		app.WithLockTTL(cfg.Lock.TTL),
	}
	if cfg.Lock.Distributed {
		client := st.redisClient(raw, cfg.Store.Redis)
		opts = append(opts, app.WithLocker(redisadapter.NewLocker(client, redisPrefix(cfg.Store.Redis))))
		logger.Info("distributed locking enabled", "addr", cfg.Store.Redis.Addr)
	}

	st.Service = app.NewService(store, newOrchestrator(cfg.Orchestrator, logger), opts...)
	return st, nil
}

func (st *stack) openStore(ctx context.Context, cfg config.StoreConfig) (ports.StateStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil
	case config.BackendFile:
		return file.New(cfg.Path), nil
	case config.BackendBolt:
		s, err := bolt.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening bolt store: %w", err)
		}
		st.closers = append(st.closers, s)
		return s, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		st.closers = append(st.closers, s)
		return s, nil
	case config.BackendRedis:
		var opts []redisadapter.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redisadapter.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redisadapter.WithTTL(cfg.Redis.TTL))
		}
		s := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		st.closers = append(st.closers, s)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// redisClient shares the store's client when the backend is Redis.
func (st *stack) redisClient(raw ports.StateStore, cfg config.RedisConfig) *backend.Client {
	if s, ok := raw.(*redisadapter.Store); ok {
		return s.Client()
	}
	client := backend.NewClient(&backend.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	st.closers = append(st.closers, client)
	return client
}

func redisPrefix(cfg config.RedisConfig) string {
	if cfg.Prefix != "" {
		return cfg.Prefix
	}
	return "uiengineer:"
}

// wrapStore applies, from the outside in: instrumentation, redaction, encryption.
func wrapStore(raw ports.StateStore, cfg config.StoreConfig, observer middleware.StoreObserver, logger *slog.Logger) (ports.StateStore, error) {
	mws := []middleware.Middleware{middleware.NewInstrumentMiddleware(observer, logger)}
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Redact))
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	return middleware.Chain(raw, mws...), nil
}

func newOrchestrator(cfg config.OrchestratorConfig, logger *slog.Logger) ports.Orchestrator {
	if cfg.Provider == config.ProviderStatic {
		logger.Info("using static orchestrator")
		return static.New()
	}
	if cfg.APIKey == "" {
		logger.Warn("no API key configured; the model endpoint must not require one", "base_url", cfg.BaseURL)
	}
	return llm.New(cfg.APIKey, cfg.BaseURL,
		llm.WithModel(cfg.Model),
		llm.WithTemperature(cfg.Temperature),
		llm.WithTimeout(cfg.Timeout),
		llm.WithLogger(logger),
	)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gastwerk/ragcache/auth"
	"github.com/gastwerk/ragcache/cache"
	"github.com/gastwerk/ragcache/config"
	"github.com/gastwerk/ragcache/health"
	"github.com/gastwerk/ragcache/httpapi"
	"github.com/gastwerk/ragcache/observe"
	"github.com/gastwerk/ragcache/rag"
	"github.com/gastwerk/ragcache/resilience"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: cfg.Observe.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.Observe.Tracing.Enabled,
			Exporter:  cfg.Observe.Tracing.Exporter,
			SamplePct: cfg.Observe.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  cfg.Observe.Metrics.Enabled,
			Exporter: cfg.Observe.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: cfg.Observe.Logging.Enabled,
			Level:   cfg.Observe.Logging.Level,
		},
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	log := obs.Logger()

	// The store is opened here and closed on the way out; nothing else
	// owns its lifecycle.
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(context.Background(), "store close failed",
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
	}()

	embedder := rag.NewHashingEmbedder(0)
	index, err := buildIndex(ctx, cfg, embedder)
	if err != nil {
		return err
	}

	orch := rag.NewOrchestrator(embedder, index, rag.NewExtractiveGenerator(), rag.Config{
		TopK:           cfg.RAG.TopK,
		MinScore:       cfg.RAG.MinScore,
		ExcerptLength:  cfg.RAG.ExcerptLength,
		FallbackAnswer: cfg.RAG.FallbackAnswer,
		Logger:         log,
		Tracer:         obs.Tracer(),
		Metrics:        obs.Metrics(),
	})

	policy := cache.NoCachePolicy()
	if *cfg.Cache.Enabled {
		policy = cache.Policy{
			DefaultTTL:   cfg.Cache.DefaultTTL,
			MaxTTL:       cfg.Cache.MaxTTL,
			SingleFlight: *cfg.Cache.SingleFlight,
		}
	}

	keyer := cache.NewDefaultKeyer()
	coordinator := cache.NewCoordinator(store, keyer, orch, policy, log, obs.Metrics())
	maintenance := cache.NewMaintenance(store, keyer, log)

	agg := health.NewAggregator()
	agg.Register("cache", health.NewProbeChecker("cache", maintenance.HealthProbe))
	agg.Register("index", health.NewStatsChecker("index", func(ctx context.Context) (map[string]any, error) {
		stats, err := index.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"name":          stats.Name,
			"total_vectors": stats.TotalVectors,
			"dimension":     stats.Dimension,
		}, nil
	}))
	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))

	server := httpapi.NewServer(httpapi.Config{
		Answerer:       coordinator,
		Maintenance:    maintenance,
		Prober:         orch,
		Health:         agg,
		Auth:           buildAuth(cfg),
		Logger:         log,
		RequestTimeout: cfg.Limits.RequestTimeout,
		RateLimiter: resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  cfg.Limits.Rate,
			Burst: cfg.Limits.Burst,
		}),
	})

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening",
			observe.Field{Key: "addr", Value: cfg.Listen},
			observe.Field{Key: "store", Value: cfg.Store.Backend},
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-stop:
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildIndex loads the configured corpus into an in-memory index.
func buildIndex(ctx context.Context, cfg *config.Config, embedder rag.Embedder) (*rag.MemoryIndex, error) {
	if cfg.RAG.DocumentsPath == "" {
		return rag.NewMemoryIndex("corpus"), nil
	}

	docs, err := rag.LoadCorpus(cfg.RAG.DocumentsPath)
	if err != nil {
		return nil, err
	}
	index, err := rag.BuildMemoryIndex(ctx, "corpus", docs, embedder)
	if err != nil {
		return nil, err
	}
	return index, nil
}

// buildAuth assembles the middleware from configured credentials, or nil
// when auth is disabled.
func buildAuth(cfg *config.Config) *auth.Middleware {
	if !cfg.Auth.Enabled {
		return nil
	}

	var authenticators []auth.Authenticator

	if cfg.Auth.JWT.Secret != "" {
		authenticators = append(authenticators, auth.NewJWTAuthenticator(auth.JWTConfig{
			Issuer:   cfg.Auth.JWT.Issuer,
			Audience: cfg.Auth.JWT.Audience,
		}, auth.NewStaticKeyProvider([]byte(cfg.Auth.JWT.Secret))))
	}

	if len(cfg.Auth.APIKeys) > 0 {
		store := auth.NewMemoryAPIKeyStore()
		for _, key := range cfg.Auth.APIKeys {
			_ = store.Add(&auth.APIKeyInfo{
				ID:        key.ID,
				KeyHash:   auth.HashAPIKey(key.Key),
				Principal: key.Principal,
				Roles:     key.Roles,
			})
		}
		authenticators = append(authenticators, auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store))
	}

	return auth.NewMiddleware(authenticators...)
}

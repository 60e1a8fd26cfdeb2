package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/cache"
	cacheRedis "github.com/kailas-cloud/askdex/internal/cache/redis"
	"github.com/kailas-cloud/askdex/internal/config"
	"github.com/kailas-cloud/askdex/internal/index/azure"
	logpkg "github.com/kailas-cloud/askdex/internal/logger"
	"github.com/kailas-cloud/askdex/internal/metrics"
	"github.com/kailas-cloud/askdex/internal/repository/facetcache"
	searchrepo "github.com/kailas-cloud/askdex/internal/repository/search"
	chiTransport "github.com/kailas-cloud/askdex/internal/transport/chi"
	openaiGen "github.com/kailas-cloud/askdex/internal/transport/openai"
	raguc "github.com/kailas-cloud/askdex/internal/usecase/rag"
	schemauc "github.com/kailas-cloud/askdex/internal/usecase/schema"
	"github.com/kailas-cloud/askdex/internal/version"

	"github.com/kailas-cloud/askdex/internal/domain/query"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting askdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_index", cfg.Search.IndexName),
		zap.String("model", cfg.OpenAI.Model),
		zap.String("provider", cfg.OpenAI.Provider),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Search index client
	indexClient, err := azure.New(&azure.Config{
		Endpoint:   cfg.Search.Endpoint,
		IndexName:  cfg.Search.IndexName,
		APIKey:     cfg.Search.APIKey,
		APIVersion: cfg.Search.APIVersion,
		Timeout:    time.Duration(cfg.Search.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create search index client", zap.Error(err))
	}

	// Generation provider
	generator, err := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:          cfg.OpenAI.APIKey,
		BaseURL:         cfg.OpenAI.BaseURL,
		AzureEndpoint:   cfg.OpenAI.AzureEndpoint,
		AzureAPIVersion: cfg.OpenAI.AzureAPIVersion,
		Model:           cfg.OpenAI.Model,
		Provider:        cfg.OpenAI.Provider,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("Failed to create generation provider", zap.Error(err))
	}

	// Schema resolver and retrieval repository
	resolver := schemauc.New(indexClient, logger)
	searchRepo := searchrepo.New(indexClient, resolver, logger)

	// Facet source, optionally behind the cache
	var facetSource raguc.FacetSource = searchRepo
	var cacheStore cache.Store
	if cfg.Cache.Enabled() {
		cacheStore, err = cacheRedis.NewStore(cacheRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		facetSource = facetcache.New(
			searchRepo, cacheStore,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.FacetCacheTotal, logger,
		)
		logger.Info("Facet cache enabled", zap.Int("ttl_sec", cfg.Cache.TTLSec))
	}

	// Pipeline service
	estimator := raguc.NewEstimator(cfg.OpenAI.Model)
	ragSvc := raguc.New(searchRepo, facetSource, generator, generator, estimator, logger)

	defaults, err := query.NewOptions(
		cfg.Pipeline.Temperature, cfg.Pipeline.MaxTokens, cfg.Pipeline.TopDocuments)
	if err != nil {
		logger.Fatal("Invalid pipeline defaults", zap.Error(err))
	}

	// Create chi server
	server := chiTransport.NewServer(ragSvc, resolver, defaults, chiTransport.ConfigSummary{
		IndexName:    cfg.Search.IndexName,
		Model:        cfg.OpenAI.Model,
		Provider:     cfg.OpenAI.Provider,
		CacheEnabled: cfg.Cache.Enabled(),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

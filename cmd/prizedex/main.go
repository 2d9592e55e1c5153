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

	"github.com/calder-labs/prizedex/internal/cache"
	"github.com/calder-labs/prizedex/internal/config"
	dbRedis "github.com/calder-labs/prizedex/internal/db/redis"
	"github.com/calder-labs/prizedex/internal/ingest"
	logpkg "github.com/calder-labs/prizedex/internal/logger"
	"github.com/calder-labs/prizedex/internal/metrics"
	"github.com/calder-labs/prizedex/internal/query"
	"github.com/calder-labs/prizedex/internal/ratelimit"
	prizerepo "github.com/calder-labs/prizedex/internal/repository/prize"
	chiTransport "github.com/calder-labs/prizedex/internal/transport/chi"
	healthuc "github.com/calder-labs/prizedex/internal/usecase/health"
	searchuc "github.com/calder-labs/prizedex/internal/usecase/search"
	"github.com/calder-labs/prizedex/internal/version"
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

	logger.Info("Starting prizedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("match_mode", cfg.Search.MatchMode),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	metrics.RegisterCollectors()

	repo := prizerepo.New(store)

	// Load the dataset off the request path: the service starts serving
	// immediately and answers 404/empty until the loader finishes. Loader
	// failures are logged, never fatal.
	feed := ingest.NewFeedClient(cfg.Loader.SourceURL, time.Duration(cfg.Loader.FetchTimeoutSec)*time.Second)
	loader := ingest.NewLoader(feed, repo, store, logger).
		WithProbeSchedule(cfg.Loader.ProbeAttempts, time.Duration(cfg.Loader.ProbeDelaySec)*time.Second)

	go func() {
		result, err := loader.Load(context.Background())
		if err != nil {
			logger.Error("Data load failed, serving empty results", zap.Error(err))
			return
		}
		metrics.LoadedRecords.Set(float64(result.RecordCount))
		logger.Info("Data load finished",
			zap.Bool("loaded", result.Loaded),
			zap.Int("record_count", result.RecordCount))
	}()

	builder := query.NewBuilder(prizerepo.IndexName, query.MatchMode(cfg.Search.MatchMode))

	searchSvc := searchuc.New(repo, builder).
		WithQueryTimeout(time.Duration(cfg.Database.QueryTimeoutSec) * time.Second)

	// Attach optional layers only when enabled. Assigning a typed nil
	// pointer into the interface field would defeat the nil checks.
	if cfg.Cache.Enabled {
		resultCache := cache.New(
			store,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.ResultCacheTotal,
			logger,
		)
		searchSvc.WithCache(resultCache)
		logger.Info("Result cache enabled", zap.Int("ttl_sec", cfg.Cache.TTLSec))
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Quota{
			PerMinute: cfg.RateLimit.PerMinute,
			PerHour:   cfg.RateLimit.PerHour,
			PerDay:    cfg.RateLimit.PerDay,
		})
		searchSvc.WithLimiter(limiter)
		logger.Info("Rate limiter enabled",
			zap.Int("per_minute", cfg.RateLimit.PerMinute),
			zap.Int("per_hour", cfg.RateLimit.PerHour),
			zap.Int("per_day", cfg.RateLimit.PerDay))
	}

	healthSvc := healthuc.New(store, repo)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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
						"error": "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

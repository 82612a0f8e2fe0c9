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

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/claimwise/claimsage/internal/config"
	dbRedis "github.com/claimwise/claimsage/internal/db/redis"
	"github.com/claimwise/claimsage/internal/domain"
	logpkg "github.com/claimwise/claimsage/internal/logger"
	"github.com/claimwise/claimsage/internal/metrics"
	"github.com/claimwise/claimsage/internal/ratelimit"
	datasetrepo "github.com/claimwise/claimsage/internal/repository/dataset"
	knowledgerepo "github.com/claimwise/claimsage/internal/repository/knowledge"
	chiTransport "github.com/claimwise/claimsage/internal/transport/chi"
	openaiProvider "github.com/claimwise/claimsage/internal/transport/openai"
	answeruc "github.com/claimwise/claimsage/internal/usecase/answer"
	benefituc "github.com/claimwise/claimsage/internal/usecase/benefit"
	embeddinguc "github.com/claimwise/claimsage/internal/usecase/embedding"
	facilityuc "github.com/claimwise/claimsage/internal/usecase/facility"
	healthuc "github.com/claimwise/claimsage/internal/usecase/health"
	ingestuc "github.com/claimwise/claimsage/internal/usecase/ingest"
	retrievaluc "github.com/claimwise/claimsage/internal/usecase/retrieval"
	"github.com/claimwise/claimsage/internal/version"
	"github.com/claimwise/claimsage/internal/worker"
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

	logger.Info("Starting claimsage API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterQueryMetrics()
	metrics.RegisterHTTPMetrics()

	pool, err := worker.NewPool(cfg.Pool.Workers)
	if err != nil {
		logger.Fatal("Failed to create worker pool", zap.Error(err))
	}

	// Providers — embedding goes through the LRU cache, generation is direct.
	baseEmbedder := openaiProvider.NewEmbedder(&openaiProvider.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	embedder, err := embeddinguc.NewCachedEmbedder(baseEmbedder, cfg.Cache.Capacity, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding cache", zap.Error(err))
	}
	generator := openaiProvider.NewGenerator(&openaiProvider.GeneratorConfig{
		APIKey:   cfg.Generation.APIKey,
		BaseURL:  cfg.Generation.BaseURL,
		Model:    cfg.Generation.Model,
		Provider: cfg.Generation.Provider,
		Logger:   logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("generation_model", cfg.Generation.Model),
	)

	knowledgeRepo := knowledgerepo.New(store)

	// Reference datasets. A missing dataset disables its feature, not the
	// whole service.
	faqDB, err := datasetrepo.LoadFAQ(cfg.Datasets.FAQ)
	if err != nil {
		logger.Warn("FAQ dataset unavailable", zap.Error(err))
		faqDB = nil
	}
	benefitStandards, err := datasetrepo.LoadBenefitStandards(cfg.Datasets.BenefitStandards)
	if err != nil {
		logger.Warn("Benefit standard table unavailable", zap.Error(err))
	}
	offices, err := datasetrepo.LoadOffices(cfg.Datasets.Offices)
	if err != nil {
		logger.Warn("Branch office directory unavailable", zap.Error(err))
	}
	facilities, err := datasetrepo.LoadFacilities(cfg.Datasets.Facilities)
	if err != nil {
		logger.Warn("Facility directory unavailable", zap.Error(err))
	}

	// Populate the knowledge index. Skipped when already populated;
	// failures degrade retrieval, answers fall through to later stages.
	ingestSvc := ingestuc.New(knowledgeRepo, embedder, cfg.Datasets, cfg.Embedding.Dimensions, logger)
	if count, err := ingestSvc.Load(ctx); err != nil {
		logger.Warn("Knowledge base load failed", zap.Error(err))
	} else {
		logger.Info("Knowledge base ready", zap.Int("documents", count))
	}

	retrievalSvc := retrievaluc.New(embedder, knowledgeRepo, pool, cfg.Retrieval, logger)
	faqMatcher := answeruc.NewFAQMatcher(faqDB)
	answerSvc := answeruc.New(faqMatcher, retrievalSvc, generator, domain.GenerateOptions{
		Temperature: cfg.Generation.Temperature,
		TopP:        cfg.Generation.TopP,
		MaxTokens:   cfg.Generation.MaxTokens,
	}, logger)
	facilitySvc := facilityuc.New(facilities, offices, logger)
	benefitSvc := benefituc.New(benefitStandards, generator, logger)
	healthSvc := healthuc.New(store, baseEmbedder, generator)

	// Admission control with a periodic sweep of idle clients.
	governor := ratelimit.NewGovernor(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowSec)*time.Second)
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(governor.Window())
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				governor.Sweep(now)
			case <-sweepDone:
				return
			}
		}
	}()

	server := chiTransport.NewServer(chiTransport.ServerConfig{
		Answers:        answerSvc,
		Presets:        faqMatcher,
		Facilities:     facilitySvc,
		Benefits:       benefitSvc,
		Admin:          ingestSvc,
		Documents:      knowledgeRepo,
		Health:         healthSvc,
		EmbeddingModel: cfg.Embedding.Model,
		Logger:         logger,
	})

	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		Base: []func(http.Handler) http.Handler{
			jsonRecoverer(logger),
			chiMiddleware.RequestID,
			wideEventMiddleware(logger),
			metrics.Middleware(),
		},
		Auth:      chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys),
		RateLimit: ratelimit.Middleware(governor, cfg.RateLimit.TrustProxy, logger),
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
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

	close(sweepDone)
	if err := pool.Drain(time.Duration(cfg.HTTP.ShutdownSec) * time.Second); err != nil {
		logger.Warn("Worker pool drain timed out", zap.Error(err))
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

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/api"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/auth"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/config"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/domain"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/logging"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/outbox"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/recommend"
	persistence "github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/persistence/postgres"
	httptransport "github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/transport/http"
)

// openEndpoints lists routes that can be reached without a bearer token.
var openEndpoints = map[string]struct{}{
	"/healthz":           {},
	"/metrics":           {},
	"/api/auth/register": {},
	"/api/auth/login":    {},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.Init(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer pool.Close()

	activityRepo := persistence.NewRepository(pool)
	userRepo := persistence.NewUserRepository(pool)

	producer := outbox.NewKafkaProducer(outbox.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		RequiredAcks: cfg.KafkaRequiredAcks,
		BatchTimeout: cfg.KafkaBatchTimeout,
	})
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, sugar.Named("outbox"), cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	go dispatcher.Start(ctx)

	service := domain.NewService(
		activityRepo,
		userRepo,
		auth.BcryptHasher{},
		domain.NewCalculator(domain.DefaultFactors()),
	)

	recommender := recommend.NewService(recommend.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
	})

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.TokenTTL}

	handler := api.NewHandler(service, recommender, authCfg)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for the SPA dev server
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	requestLogger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			sugar.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}

	authMiddleware := auth.NewMiddleware(authCfg, func(r *http.Request) bool {
		_, open := openEndpoints[r.URL.Path]
		return open || r.Method == http.MethodOptions
	})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, requestLogger(cors(authMiddleware.Wrap(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infow("ecotrack api listening", "address", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server error", "error", err)
		}
	}()

	<-shutdownCh
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		sugar.Warnw("graceful shutdown failed", "error", err)
	}

	dispatcher.Wait()
}

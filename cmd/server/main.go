package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	declhandler "liaison/internal/declaration/handler"
	declservice "liaison/internal/declaration/service"
	declstore "liaison/internal/declaration/store"
	"liaison/internal/match/events"
	matchhandler "liaison/internal/match/handler"
	"liaison/internal/match/matcher"
	matchservice "liaison/internal/match/service"
	matchstore "liaison/internal/match/store"
	"liaison/internal/platform/config"
	"liaison/internal/platform/database"
	"liaison/internal/platform/health"
	"liaison/internal/platform/httpserver"
	"liaison/internal/platform/kafka"
	"liaison/internal/platform/kafka/producer"
	"liaison/internal/platform/logger"
	"liaison/internal/platform/metrics"
	"liaison/internal/platform/middleware"
	"liaison/internal/platform/redis"
	profilehandler "liaison/internal/profile/handler"
	profileservice "liaison/internal/profile/service"
	profilestore "liaison/internal/profile/store"
	statshandler "liaison/internal/stats/handler"
	statsservice "liaison/internal/stats/service"
	"liaison/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthHandler := health.New(cfg.Environment)

	// Storage. Without DATABASE_URL the service runs entirely in memory,
	// which is how the demo environment and most tests run it.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var (
		declarations declstore.Store
		matches      matchstore.Store
		profiles     profilestore.Store
		runner       tx.Runner
	)
	if pool != nil {
		if err := pool.Migrate(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		declarations = declstore.NewPostgres(pool.DB())
		matches = matchstore.NewPostgres(pool.DB())
		profiles = profilestore.NewPostgres(pool.DB())
		runner = tx.SQLRunner{DB: pool.DB()}
		healthHandler.RegisterCheck("database", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
		log.Info("storage configured", "backend", "postgres")
	} else {
		declarations = declstore.New()
		matches = matchstore.New()
		profiles = profilestore.New()
		runner = tx.Passthrough{}
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	cache, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return cache.Health(checkCtx)
		})
		go pollRedisStats(ctx, cache)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		producerCfg := kafka.DefaultProducerConfig()
		producerCfg.Brokers = cfg.KafkaBrokers
		kafkaProducer, err = producer.New(producerCfg, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		publisher = events.NewKafkaPublisher(kafkaProducer, cfg.MatchTopic, log, m)
		checker := kafka.NewHealthChecker(cfg.KafkaBrokers)
		healthHandler.RegisterCheck("kafka", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return checker.Check(checkCtx)
		})
	}

	matchMaker := matcher.New(declarations, matches, profiles,
		matcher.WithLogger(log),
		matcher.WithMetrics(m),
	)
	declarationSvc := declservice.NewService(declarations, matchMaker, profiles, runner,
		declservice.WithLogger(log),
		declservice.WithMetrics(m),
		declservice.WithEvents(publisher),
	)
	matchSvc := matchservice.NewService(matches, declarations,
		matchservice.WithLogger(log),
		matchservice.WithMetrics(m),
	)
	profileSvc := profileservice.NewService(profiles, profileservice.WithLogger(log))
	statsSvc := statsservice.NewService(profiles, declarations, matches,
		statsservice.WithCache(cache, cfg.StatsCacheTTL),
		statsservice.WithLogger(log),
		statsservice.WithMetrics(m),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.BodyLimit(cfg.RequestBodyLimit))
	r.Use(middleware.ContentTypeJSON)

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	statshandler.New(statsSvc, log).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ResolveActor(middleware.ActorConfig{
			SigningKey: []byte(cfg.JWTSigningKey),
			AllowDemo:  cfg.DemoMode,
		}, log))
		declhandler.New(declarationSvc, log, m).Register(r)
		matchhandler.New(matchSvc, log, m).Register(r)
		profilehandler.New(profileSvc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Addr, "environment", cfg.Environment, "demo_mode", cfg.DemoMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(shutdownCtx); err != nil {
			log.Error("kafka producer close failed", "error", err)
		}
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			log.Error("redis close failed", "error", err)
		}
	}
	if pool != nil {
		if err := pool.Close(); err != nil {
			log.Error("database close failed", "error", err)
		}
	}
	log.Info("server stopped")
}

// pollRedisStats exports connection pool stats until the context ends.
func pollRedisStats(ctx context.Context, cache *redis.Client) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cache.RecordPoolStats()
		}
	}
}

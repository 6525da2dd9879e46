package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"zoowatch/internal/access"
	"zoowatch/internal/artifact"
	"zoowatch/internal/audit"
	"zoowatch/internal/extraction"
	identityhandler "zoowatch/internal/identity/handler"
	identityservice "zoowatch/internal/identity/service"
	identitystore "zoowatch/internal/identity/store"
	"zoowatch/internal/platform/config"
	"zoowatch/internal/platform/db"
	"zoowatch/internal/platform/httpserver"
	"zoowatch/internal/platform/logger"
	"zoowatch/internal/platform/metrics"
	"zoowatch/internal/platform/redis"
	"zoowatch/internal/session"
	sessionstore "zoowatch/internal/session/store"
	submissionhandler "zoowatch/internal/submission/handler"
	submissionservice "zoowatch/internal/submission/service"
	submissionstore "zoowatch/internal/submission/store"
	transport "zoowatch/internal/transport/http"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()

	userStore, submissionStore, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := identitystore.SeedDefaultUsers(ctx, userStore); err != nil {
		return err
	}

	sessionStore, err := buildSessionStore(cfg, log)
	if err != nil {
		return err
	}

	artifacts, err := buildArtifactStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	auditor := audit.NewPublisher(256, log)
	sink, err := buildAuditSink(ctx, cfg, log)
	if err != nil {
		return err
	}

	m := metrics.New()
	tokens := session.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)
	authService := identityservice.New(userStore, sessionStore, tokens, auditor, log)
	extractor := extraction.NewSubprocess(cfg.ExtractorCommand, cfg.ExtractorTimeout, log)
	submissionService := submissionservice.New(
		submissionStore, extractor, artifacts, access.NewGate(), m, auditor, log, cfg.ExtractorLocale,
	)

	router := transport.NewRouter(log, m,
		identityhandler.New(authService, authService, log, cfg.SessionTTL),
		submissionhandler.New(submissionService, authService, log),
	)

	apiServer := httpserver.New(cfg.Addr, router)
	metricsServer := httpserver.New(cfg.MetricsAddr, promhttp.Handler())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("api server listening", "addr", cfg.Addr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := audit.NewWorker(sink, auditor.Inbox(), log).Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
		return apiServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type userStore interface {
	identityservice.UserStore
	identitystore.UserWriter
	submissionstore.UserResolver
}

// buildStores wires Postgres-backed stores when DATABASE_URL is set and
// in-memory stores otherwise, so development needs no external services.
func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (userStore, submissionservice.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users := identitystore.NewInMemoryStore()
		return users, submissionstore.NewInMemoryStore(users), func() {}, nil
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(pool, "migrations"); err != nil {
		_ = pool.Close()
		return nil, nil, nil, err
	}
	cleanup := func() { _ = pool.Close() }
	return identitystore.NewPostgres(pool), submissionstore.NewPostgres(pool), cleanup, nil
}

func buildSessionStore(cfg config.Config, log *slog.Logger) (identityservice.SessionStore, error) {
	client, err := redis.New(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, using in-memory sessions")
		return sessionstore.NewInMemoryStore(), nil
	}
	return sessionstore.NewRedisStore(client.Client), nil
}

func buildArtifactStore(ctx context.Context, cfg config.Config, log *slog.Logger) (artifact.Store, error) {
	if cfg.S3Bucket != "" {
		return artifact.NewS3Store(ctx, artifact.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	log.Info("storing artifacts on local disk", "dir", cfg.DataDir)
	return artifact.NewLocalStore(cfg.DataDir)
}

func buildAuditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Warn("KAFKA_BROKERS not set, keeping audit events in memory")
		return audit.NewMemorySink(1024), nil
	}
	return audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
}

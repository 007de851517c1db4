package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/neurix/cmd"
	"github.com/nulzo/neurix/internal/analytics"
	"github.com/nulzo/neurix/internal/cli"
	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/gateway"
	"github.com/nulzo/neurix/internal/platform/logger"
	"github.com/nulzo/neurix/internal/platform/otel"
	"github.com/nulzo/neurix/internal/ratelimit"
	"github.com/nulzo/neurix/internal/relay"
	"github.com/nulzo/neurix/internal/server"
	"github.com/nulzo/neurix/internal/store"
	"github.com/nulzo/neurix/internal/store/sqlite"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Import providers to trigger init() registration
	_ "github.com/nulzo/neurix/internal/llm/anthropic"
	_ "github.com/nulzo/neurix/internal/llm/google"
	_ "github.com/nulzo/neurix/internal/llm/ollama"
	_ "github.com/nulzo/neurix/internal/llm/openai"
	_ "github.com/nulzo/neurix/internal/llm/relay"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	shutdownTracer, err := otel.InitTracer(cfg.Tracing, zapLogger, os.Stdout)
	if err != nil {
		zapLogger.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	go checkForUpdates(cfg.Server.UpdateCheckURL, zapLogger)

	if cfg.Relay.APIKey == "" {
		zapLogger.Warn(fmt.Sprintf("%s %s", cli.WarningSign(),
			cli.Style("relay.api_key is not set, /api/chat will answer 500", cli.Yellow)))
	}

	// usage tracking
	var (
		repo       store.Repository
		ingestor   analytics.Ingestor
		analytic   analytics.Service
		ingestCtx  context.Context
		stopIngest context.CancelFunc
	)
	if cfg.Database.Enabled {
		repo, err = sqlite.NewSQLiteStorage(cfg.Database.DSN)
		if err != nil {
			zapLogger.Fatal("Failed to open usage store", zap.Error(err))
		}
		ingestor = analytics.NewIngestor(zapLogger, repo)
		analytic = analytics.NewService(repo)

		ingestCtx, stopIngest = context.WithCancel(context.Background())
		ingestor.Start(ingestCtx)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			zapLogger.Warn("Redis is not reachable yet", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}

	relayLimiter := newLimiter(cfg.Relay.Store, redisClient, cfg.Relay.RateLimit, "neurix:ratelimit:relay:")
	compareLimiter := newLimiter(cfg.Relay.Store, redisClient, cfg.Dispatch.RateLimit, "neurix:ratelimit:compare:")

	registry := gateway.BootstrapRegistry(cfg, zapLogger)
	dispatcher := gateway.NewDispatcher(registry, zapLogger, gateway.OptionsFromConfig(cfg.Dispatch))

	relayService := relay.NewService(cfg.Relay, relay.NewClient(cfg.Relay, nil), zapLogger, ingestor)

	srv := server.New(cfg, zapLogger, server.Deps{
		Relay:          relayService,
		RelayLimiter:   relayLimiter,
		Dispatcher:     dispatcher,
		CompareLimiter: compareLimiter,
		Analytics:      analytic,
		Ingestor:       ingestor,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		zapLogger.Info(fmt.Sprintf("%s neurix listening", cli.Arrow()),
			zap.String("addr", httpServer.Addr),
			zap.Strings("relay_models", relayService.Models()),
			zap.Strings("dispatch_models", registry.Enabled()),
			zap.String("version", cmd.AppVersion),
		)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("Server failed", zap.Error(err))
		}
	case sig := <-shutdown:
		zapLogger.Info("Starting shutdown", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := httpServer.Shutdown(ctx); err != nil {
			zapLogger.Error("Graceful shutdown failed", zap.Error(err))
			_ = httpServer.Close()
		}
		cancel()
	}

	if ingestor != nil {
		ingestor.Stop()
		stopIngest()
	}
	if repo != nil {
		_ = repo.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracer(ctx); err != nil {
		zapLogger.Error("Failed to flush traces", zap.Error(err))
	}
}

// newLimiter picks the store named by kind. Config validation guarantees a
// redis client exists when kind is "redis".
func newLimiter(kind string, client *redis.Client, cfg config.RateLimitConfig, prefix string) *ratelimit.Limiter {
	policy := ratelimit.PolicyFromConfig(cfg)
	if kind == "redis" && client != nil {
		return ratelimit.NewLimiter(ratelimit.NewRedisStore(client, policy, prefix))
	}
	return ratelimit.NewLimiter(ratelimit.NewMemoryStore(policy))
}

func checkForUpdates(url string, log *zap.Logger) {
	if url == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	u, err := cmd.CheckForUpdates(ctx, url)
	if err != nil {
		log.Debug("Update check failed", zap.Error(err))
		return
	}
	if u.Outdated {
		log.Warn(fmt.Sprintf("%s You are running an outdated version (%s). The latest version is %s.",
			cli.WarningSign(), u.Current, u.Latest))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/yume/internal/basket"
	"github.com/fjod/yume/internal/cache"
	yumegrpc "github.com/fjod/yume/internal/grpc"
	h "github.com/fjod/yume/internal/http"
	"github.com/fjod/yume/internal/pricing"
	"github.com/fjod/yume/internal/repository"
	"github.com/fjod/yume/internal/service"
	"github.com/fjod/yume/internal/store"
	"github.com/fjod/yume/pkg/config"
	"github.com/fjod/yume/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const healthCheckInterval = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer l.Sync()
	zap.ReplaceGlobals(l)
	l = l.With(zap.String("service", cfg.ServiceName))

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if err := run(cfg, l); err != nil {
		l.Fatal("service failed", zap.Error(err))
	}
}

func run(cfg *config.Config, l *zap.Logger) error {
	// Catalog
	repo, err := repository.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	l.Info("Migrations completed successfully", zap.String("db_path", cfg.CatalogDBPath))

	// Menu cache
	var menuCache cache.MenuCache = cache.NopCache{}
	checks := map[string]yumegrpc.Check{"catalog": repo.Ping}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			// the breaker keeps the menu served from SQLite while Redis is down
			l.Warn("Redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			l.Info("Redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		}

		menuCache = cache.NewRedisCache(redisClient, cfg.MenuCacheTTL)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		l.Info("REDIS_ADDR not set, menu cache disabled")
	}

	menuService := service.NewMenuService(repo, menuCache, l)
	orderService := service.NewOrderService(menuService, l)

	// Sessions
	sessions := store.NewMemoryStore(
		store.WithTTL(cfg.SessionTTL),
		store.WithCleanupInterval(cfg.SessionCleanupInterval),
		store.WithLogger(l),
		store.WithOnCreate(func(sessionID string, b *basket.Basket) {
			sl := l.With(zap.String("session_id", sessionID))
			b.Subscribe(func(s basket.Snapshot) {
				sl.Debug("basket changed",
					zap.Uint64("version", s.Version),
					zap.String("state", s.State.String()),
					zap.Int("line_items", len(s.Items)),
					zap.String("total_amount", pricing.Format(s.TotalAmount)))
			})
		}),
	)
	defer sessions.Close()

	// HTTP
	router := h.NewRouter(h.RouterConfig{
		ServiceName:    cfg.ServiceName,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         l,
		Menu:           h.NewMenuHandler(menuService, cfg.RequestTimeout, l),
		Basket:         h.NewBasketHandler(sessions, orderService, l),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC health
	healthServer := yumegrpc.NewHealthServer(l, checks)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}
	healthServer.StartChecks(healthCheckInterval, 2*time.Second)

	errCh := make(chan error, 2)
	go func() {
		l.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		l.Info("gRPC health server listening", zap.String("port", cfg.GRPCPort))
		if err := healthServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-errCh:
	}

	l.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}
	healthServer.Stop()

	l.Info("server exited", zap.Int("open_sessions", sessions.Len()))
	return runErr
}

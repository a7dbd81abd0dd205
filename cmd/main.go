package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lxtrip/holdbroker/internal/clock"
	"lxtrip/holdbroker/internal/config"
	"lxtrip/holdbroker/internal/handler"
	"lxtrip/holdbroker/internal/repository"
	"lxtrip/holdbroker/internal/service"
	jwtpkg "lxtrip/holdbroker/pkg/jwt"
)

func main() {
	// 1. Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Initialize state store (auto, Redis or in-memory)
	clk := clock.NewSystem()
	memoryStore := repository.NewMemoryStateStore(clk, logger.Named("memory_store"))

	var (
		stateStore   repository.StateStore
		storeBackend func() string
	)
	switch cfg.State.Backend {
	case "auto", "redis":
		redisClient, err := config.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("failed to configure redis", zap.Error(err))
		}
		defer redisClient.Close()

		monitor := repository.NewRedisHealthMonitor(redisClient, logger.Named("redis_health"))
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout+time.Second)
		if err := monitor.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()

		redisStore := repository.NewRedisStateStore(redisClient)
		if cfg.State.Backend == "redis" {
			if !monitor.Live() {
				logger.Fatal("redis backend required but unreachable")
			}
			stateStore = redisStore
			storeBackend = func() string { return repository.BackendRedis }
			logger.Info("using Redis state store")
		} else {
			selector := repository.NewSelectingStateStore(redisStore, memoryStore, monitor)
			stateStore = selector
			storeBackend = selector.Backend
			go monitor.Run(ctx, cfg.Redis.HealthInterval)
			go memoryStore.Run(ctx, cfg.Hold.SweepInterval)
			logger.Info("using Redis state store with in-memory fallback", zap.Bool("redis_live", monitor.Live()))
		}
	case "memory":
		stateStore = memoryStore
		storeBackend = func() string { return repository.BackendMemory }
		go memoryStore.Run(ctx, cfg.Hold.SweepInterval)
		logger.Info("using in-memory state store")
	}

	// 4. Initialize services
	holdService := service.NewHoldService(stateStore, clk, logger.Named("holds"),
		service.WithHoldTTL(cfg.Hold.TTL),
		service.WithMarkupRate(cfg.Hold.MarkupRate),
	)

	var offerGateway service.OfferGateway
	if cfg.Offers.BaseURL != "" {
		offerGateway = service.NewHTTPOfferGateway(cfg.Offers.BaseURL, cfg.Offers.APIKey, cfg.Offers.Timeout)
		logger.Info("offer search enabled", zap.String("base_url", cfg.Offers.BaseURL))
	}

	var jwtManager *jwtpkg.Manager
	if cfg.JWT.SigningKey != "" {
		jwtManager = jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer)
	}

	// 5. Initialize handlers
	holdHandler := handler.NewHoldHandler(holdService, logger)
	var offerHandler *handler.OfferHandler
	if offerGateway != nil {
		offerHandler = handler.NewOfferHandler(offerGateway, logger)
	}
	adminHandler := handler.NewAdminHandler(holdService, logger)

	// 6. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, holdHandler, offerHandler, adminHandler, storeBackend)

	// 7. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 8. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

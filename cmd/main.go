package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	ledgercmd "github.com/gojenga/gojenga/internal/command"
	"github.com/gojenga/gojenga/internal/handler"
	ledgerqry "github.com/gojenga/gojenga/internal/query"
	"github.com/gojenga/gojenga/internal/repository"
	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/config"
	"github.com/gojenga/gojenga/shared/events"
	"github.com/gojenga/gojenga/shared/logging"
	"github.com/gojenga/gojenga/shared/metrics"
	"github.com/gojenga/gojenga/shared/middleware"
	redisClient "github.com/gojenga/gojenga/shared/redis"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	eventStreamMaxLen = 10000
	historyGroup      = "ledger-history"
)

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	if !dotenv {
		logger.Debug("no .env file found, using process environment")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis connection (view cache, history, event streaming, and the redis store backend)
	redis, err := redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()

	kv, closeStore, err := openStore(ctx, cfg, redis)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()
	logger.Info("store ready", zap.String("backend", cfg.StoreBackend))

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client, eventStreamMaxLen)

	ledgerRepo := repository.NewLedgerRepository(kv, cfg.Tables.Ledger)
	userRepo := repository.NewUserRepository(kv, cfg.Tables.Users)
	portfolioRepo := repository.NewPortfolioRepository(kv, cfg.Tables.Portfolio)
	accountReadRepo := repository.NewAccountReadRepository(ledgerRepo, redis.Client, logger)

	coordinator := ledgercmd.NewTransactionCoordinator(ledgerRepo, logger.Named("coordinator"))
	accountCmds := ledgercmd.NewAccountCommandService(ledgerRepo, coordinator, accountReadRepo, publisher, logger.Named("accounts"))
	userCmds := ledgercmd.NewUserCommandService(userRepo, accountCmds, portfolioRepo, logger.Named("users"))
	portfolioCmds := ledgercmd.NewPortfolioCommandService(portfolioRepo)

	accountQrys := ledgerqry.NewAccountQueryService(accountReadRepo)
	userQrys := ledgerqry.NewUserQueryService(userRepo, portfolioRepo)
	authQrys := ledgerqry.NewAuthQueryService(userRepo, []byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	accountHandler := handler.NewAccountHandler(accountCmds, accountQrys)
	userHandler := handler.NewUserHandler(userCmds, userQrys)
	authHandler := handler.NewAuthHandler(authQrys)
	portfolioHandler := handler.NewPortfolioHandler(portfolioCmds, userQrys)

	// Setup router
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(logger.Named("http")))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.TestModeMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginBurst, logger.Named("ratelimit"))
	loginLimiter.StartCleanup(10*time.Minute, 10000, ctx.Done())

	router.POST("/login", loginLimiter.Handler(), authHandler.Login)
	router.POST("/refresh", authHandler.RefreshToken)
	router.POST("/user", userHandler.CreateUser)

	auth := middleware.AuthMiddleware([]byte(cfg.JWTSecret))
	users := router.Group("/user", auth)
	{
		users.GET("/:username", userHandler.GetUser)
		users.PUT("/:username", userHandler.UpdateUser)
		users.DELETE("/:username", userHandler.DeleteUser)
	}

	accounts := router.Group("/account", auth)
	{
		accounts.POST("", accountHandler.CreateAccount)
		accounts.GET("/:username", accountHandler.GetAccount)
		accounts.PUT("/:username", accountHandler.UpdateAccount)
		accounts.DELETE("/:username", accountHandler.DeleteAccount)
		accounts.POST("/:username/deposit", accountHandler.Deposit)
		accounts.POST("/:username/transaction", accountHandler.Transaction)
		accounts.GET("/:username/history", accountHandler.ListHistory)
	}

	portfolios := router.Group("/portfolio", auth)
	{
		portfolios.GET("/:username", portfolioHandler.GetPortfolio)
		portfolios.PUT("/:username", portfolioHandler.UpdatePortfolio)
	}

	go func() {
		hostname, _ := os.Hostname()
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    historyGroup,
			Consumer: "history-" + hostname,
			Stream:   events.LedgerEventsStream,
			Handler:  accountCmds.HandleLedgerEvent,
			Logger:   logger.Named("subscriber"),
		})
		if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("subscriber stopped", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("gojenga starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// openStore builds the configured KeyValueStore backend.
func openStore(ctx context.Context, cfg *config.Config, redis *redisClient.Client) (store.KeyValueStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		pg := store.NewPostgresStore(db)
		if err := pg.EnsureTables(ctx, cfg.Tables.All()...); err != nil {
			db.Close()
			return nil, nil, err
		}
		return pg, func() { db.Close() }, nil
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}, nil
	default:
		return store.NewRedisStore(redis.Client), func() {}, nil
	}
}

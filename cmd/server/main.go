package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"webapp/docs" // swagger docs

	"webapp/internal/auth"
	"webapp/internal/awsx"
	"webapp/internal/cache"
	"webapp/internal/config"
	"webapp/internal/db"
	"webapp/internal/handler"
	"webapp/internal/logging"
	"webapp/internal/notify"
	"webapp/internal/repository"
	"webapp/internal/router"
	"webapp/internal/service"
	"webapp/internal/storage"
)

// @title Web App API
// @version 1.0
// @description Account registration, email verification and per-user image storage.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.basic BasicAuth
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if cfg.ResetDB {
		logger.Warn(ctx, "RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	awsCfg, err := awsx.Load(ctx, cfg)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	objectStore := storage.NewS3Store(awsCfg, cfg.S3Bucket, cfg.S3Endpoint)
	publisher := notify.NewSNSPublisher(awsCfg, cfg.SNSTopicARN)

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(gormDB)
	imageRepo := repository.NewImageRepository(gormDB)

	// Initialize auth components
	tokens := auth.NewVerificationTokens(cfg.SecretKey, cfg.TokenMaxAge)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(accountRepo)
	accountService := service.NewAccountService(
		accountRepo,
		authService,
		tokens,
		tokenStore,
		publisher,
		cacheClient,
		cfg.BaseURL,
		logger.With("component", "accounts"),
	)
	imageService := service.NewImageService(imageRepo, objectStore, logger.With("component", "images"))

	e := echo.New()
	router.Register(e, authService, router.Handlers{
		Users:  handler.NewUserHandler(accountService),
		Images: handler.NewImageHandler(imageService),
		Health: handler.NewHealthHandler(func(ctx context.Context) error {
			return db.Ping(ctx, gormDB)
		}),
	}, logger)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info(ctx, "server listening", "addr", addr, "swagger", "/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown", "error", err)
	}
}

// Package main is the entry point for the QuintaStock API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"quintastock/internal/core/security"
	"quintastock/internal/domain/auth"
	"quintastock/internal/domain/ledger"
	"quintastock/internal/domain/quinta"
	"quintastock/internal/domain/reports"
	"quintastock/internal/domain/transfer"
	"quintastock/internal/infrastructure/cache"
	v1 "quintastock/internal/infrastructure/http/v1"
	"quintastock/internal/infrastructure/storage/postgres"
	"quintastock/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting quintastock server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	ledgerRepo := postgres.NewLedgerRepo(txManager)
	transferRepo := postgres.NewTransferRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)
	tokenRepo := postgres.NewTokenRepo(txManager)
	reportRepo := postgres.NewReportRepo(txManager)

	var quintaRepo quinta.Repository = postgres.NewQuintaRepo(txManager)

	// --- Redis cache for the quinta catalog (optional) ---
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		redisClient, err := cache.NewRedisClient(redisAddr, getEnv("REDIS_PASSWORD", ""), getEnvInt("REDIS_DB", 0))
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		quintaRepo = cache.NewQuintaCache(quintaRepo, redisClient)
		log.Infow("quinta catalog cache enabled", "addr", redisAddr)
	}

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- JWT and Auth ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, tokenRepo, jwtService, auth.DefaultServiceConfig())

	// --- Domain services ---
	stockService := ledger.NewService(ledgerRepo, auditService)
	quintaService := quinta.NewService(quintaRepo, stockService)

	reviewRule, err := security.CompileReviewRule(getEnv("APPROVAL_REVIEW_RULE", ""))
	if err != nil {
		log.Fatalw("invalid APPROVAL_REVIEW_RULE", "error", err)
	}
	if reviewRule != nil {
		log.Infow("approval review rule active", "rule", reviewRule.Source())
	}

	transferService := transfer.NewService(
		transferRepo,
		stockService,
		quintaService,
		txManager,
		reviewRule,
		auditService,
	)

	reportService := reports.NewService(reportRepo, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		QuintaService:   quintaService,
		StockService:    stockService,
		TransferService: transferService,
		ReportService:   reportService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

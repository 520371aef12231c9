// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"quintastock/internal/core/security"
	"quintastock/internal/domain/auth"
	"quintastock/internal/domain/ledger"
	"quintastock/internal/domain/quinta"
	"quintastock/internal/domain/reports"
	"quintastock/internal/domain/transfer"
	"quintastock/internal/infrastructure/http/v1/handlers"
	"quintastock/internal/infrastructure/http/v1/middleware"
	"quintastock/internal/infrastructure/storage/postgres"
	"quintastock/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	// Pool is the database connection (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Services
	AuthService     *auth.Service
	QuintaService   *quinta.Service
	StockService    *ledger.Service
	TransferService *transfer.Service
	ReportService   *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth endpoints: login/refresh public, logout/me behind JWT
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		publicAuth := v1.Group("/auth")
		protectedAuth := v1.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		// Everything else requires a valid token
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// --- USERS (supervisors or the user admin permission) ---
		{
			users := protected.Group("/users")
			users.Use(middleware.RequirePermission(security.PermissionUsuarios))
			handlers.NewUserHandler(baseHandler, cfg.AuthService).RegisterRoutes(users)
		}

		// --- QUINTA CATALOG ---
		{
			read := protected.Group("/quintas")
			write := protected.Group("/quintas")
			write.Use(middleware.RequireRole(security.RoleSupervisor))
			handlers.NewQuintaHandler(baseHandler, cfg.QuintaService).RegisterRoutes(read, write)
		}

		// --- STOCK LEDGER ---
		{
			read := protected.Group("/stock")
			read.Use(middleware.RequireAnyPermission(security.PermissionVinhos, security.PermissionStock))
			write := protected.Group("/stock")
			write.Use(middleware.RequireRole(security.RoleSupervisor))
			handlers.NewStockHandler(baseHandler, cfg.StockService).RegisterRoutes(read, write)
		}

		// --- TRANSFERS ---
		{
			transfers := protected.Group("/transfers")
			transfers.Use(middleware.RequireAnyPermission(
				security.PermissionMovimentar, security.PermissionHistorico))
			approvals := protected.Group("/transfers")
			approvals.Use(middleware.RequirePermission(security.PermissionAprovar))
			handlers.NewTransferHandler(baseHandler, cfg.TransferService).RegisterRoutes(transfers, approvals)
		}

		// --- REPORTS ---
		{
			rep := protected.Group("/reports")
			rep.Use(middleware.RequirePermission(security.PermissionRelatorios))
			handlers.NewReportHandler(baseHandler, cfg.ReportService).RegisterRoutes(rep)
		}

		// --- DASHBOARD ---
		{
			dash := protected.Group("/dashboard")
			handlers.NewDashboardHandler(baseHandler, cfg.TransferService, cfg.StockService).RegisterRoutes(dash)
		}
	}

	return router
}

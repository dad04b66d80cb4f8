// Package server hosts the sandbox bank API: the same endpoints, status
// codes and payloads as the production back office, backed by a local
// SQLite file so the CLI can be developed and tested against it.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tellerdesk-dev/tellerdesk/internal/auth"
	"github.com/tellerdesk-dev/tellerdesk/internal/config"
	"github.com/tellerdesk-dev/tellerdesk/internal/ledger"
	"github.com/tellerdesk-dev/tellerdesk/internal/loans"
	"github.com/tellerdesk-dev/tellerdesk/internal/models"
	"github.com/tellerdesk-dev/tellerdesk/internal/scheduler"
	"github.com/tellerdesk-dev/tellerdesk/internal/seed"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	ledger    *ledger.Service
	loans     *loans.Service
	scheduler *scheduler.Scheduler
	version   string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Initialize JWT authentication
	auth.InitializeJWT(cfg.Auth.JWTSecret)

	// Seed the database: configured fixture file, or the built-in one
	fixture := seed.Default()
	if cfg.Seed.File != "" {
		fixture, err = seed.LoadFile(cfg.Seed.File)
		if err != nil {
			return nil, err
		}
	}
	if err := seed.Apply(db, fixture, zlog); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	// Initialize domain services
	ledgerService := ledger.NewService(db, zlog)
	loansService := loans.NewService(db, ledgerService, zlog)

	// Create server
	server := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		ledger:    ledgerService,
		loans:     loansService,
		scheduler: scheduler.New(loansService, zlog),
		version:   version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 // 5 minutes
		busyTimeout     = 5000
		cacheSize       = 10000 // 10MB
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// accountULID reports whether a request field is a well-formed account id
func accountULID(fl validator.FieldLevel) bool {
	_, err := ulid.ParseStrict(fl.Field().String())
	return err == nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_id", accountULID)
	}

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware, for the browser variant of the back office
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints (no auth required)
	s.router.POST("/api/auth/login", s.login)

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		// Auth endpoints
		api.GET("/auth/me", s.getCurrentUser)

		// Accounts
		accountRoutes := api.Group("/accounts")
		{
			accountRoutes.POST("/create", s.openAccount)
			accountRoutes.GET("/my-accounts", s.myAccounts)
			accountRoutes.DELETE("/:id", s.closeAccount)
			accountRoutes.PUT("/:id/freeze", s.freezeAccount)
			accountRoutes.PUT("/:id/unfreeze", s.unfreezeAccount)
			accountRoutes.PUT("/:id/restore", s.restoreAccount)
			accountRoutes.GET("/admin", RequireRoles(s.logger, models.RoleAdmin), s.allAccounts)
		}

		// Transactions
		txRoutes := api.Group("/transactions")
		{
			txRoutes.POST("/deposit", s.deposit)
			txRoutes.POST("/withdraw", s.withdraw)
			txRoutes.POST("/transfer", s.transfer)
			txRoutes.GET("/:id/history", s.history)
		}

		// Loans
		loanRoutes := api.Group("/loans")
		{
			loanRoutes.POST("/apply", s.applyLoan)
			loanRoutes.GET("", s.listLoans)
			loanRoutes.GET("/pending", RequireRoles(s.logger, models.RoleAdmin), s.pendingLoans)
			loanRoutes.PUT("/:id/approve", RequireRoles(s.logger, models.RoleAdmin), s.approveLoan)
			loanRoutes.PUT("/:id/reject", RequireRoles(s.logger, models.RoleAdmin), s.rejectLoan)
			loanRoutes.POST("/:id/repay", s.repayLoan)
			loanRoutes.GET("/:id/schedule", s.loanSchedule)
		}

		// Users
		userRoutes := api.Group("/users")
		{
			userRoutes.GET("", RequireRoles(s.logger, models.RoleAdmin), s.listUsers)
			userRoutes.POST("/register", RequireRoles(s.logger, models.RoleAdmin), s.registerUser)
			userRoutes.PUT("/change-password", s.changePassword)
			userRoutes.PUT("/:id/last-login", s.updateLastLogin)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "tellerdesk-sandbox",
	})
}

// Router returns the underlying handler, used by in-process test servers
func (s *Server) Router() http.Handler {
	return s.router
}

// GetDB returns the database connection
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Start starts the HTTP server and the loan sweeps, blocking until a
// shutdown signal arrives
func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start loan sweeps: %w", err)
	}

	// Create HTTP server with production timeouts
	srv := &http.Server{
		Addr:              s.config.HTTP.Addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second, // 5 minutes
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("addr", s.config.HTTP.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	s.scheduler.Stop()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		s.logger.Info().Msg("Closing database connection...")
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		} else {
			s.logger.Info().Msg("Database closed successfully")
		}
	}

	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"billplan/internal/config"
	"billplan/internal/database"
	"billplan/internal/handlers"
	"billplan/internal/logger"
	"billplan/internal/messaging"
	"billplan/internal/middleware"
	"billplan/internal/models"
	"billplan/internal/services"
	"billplan/internal/tasks"
	"billplan/internal/validator"
	"billplan/internal/worker"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Connect to the message broker
	broker, err := messaging.NewClient(
		appConfig.AMQPURL,
		appConfig.AMQPExchange,
		appConfig.DeletionQueue,
		appConfig.TransactionQueue,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}
	defer broker.Close()

	// Task queue for detached side effects
	taskQueue := tasks.NewQueue(appConfig.TaskQueueSize, appConfig.TaskWorkers)

	// Initialize services
	db := dbManager.DB()
	usageLimitService := services.NewUsageLimitService(db)
	balanceService := services.NewBalanceService(db)
	categoryService := services.NewCategoryService(db, usageLimitService, broker, taskQueue, standardTemplates(appConfig))
	postingService := services.NewPostingService(usageLimitService, balanceService)

	// Initialize handlers
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	usageLimitHandler := handlers.NewUsageLimitHandler(usageLimitService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	transactionHandler := handlers.NewTransactionHandler(postingService)

	// Register custom request validators
	validator.Register()

	router := newRouter(categoryHandler, usageLimitHandler, balanceHandler, transactionHandler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}

	transactionWorker := worker.NewTransactionWorker(postingService)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting billplan server on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := taskQueue.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := broker.ConsumeTransactionEvents(ctx, transactionWorker.HandleTransactionEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// newRouter assembles the Gin engine with middleware and routes.
func newRouter(
	categoryHandler *handlers.CategoryHandler,
	usageLimitHandler *handlers.UsageLimitHandler,
	balanceHandler *handlers.BalanceHandler,
	transactionHandler *handlers.TransactionHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group, all routes require a bearer token
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("/standard", categoryHandler.SeedStandardCategories)
	categories.GET("/:name", categoryHandler.GetCategory)
	categories.PUT("/:name", categoryHandler.UpdateCategory)
	categories.DELETE("/:name", categoryHandler.DeleteCategory)

	usageLimits := v1.Group("/usage-limits")
	usageLimits.GET("", usageLimitHandler.ListUsageLimits)
	usageLimits.PUT("/:category", usageLimitHandler.SetLimit)

	v1.GET("/balance", balanceHandler.GetBalance)
	v1.POST("/transactions", transactionHandler.PostTransaction)

	return router
}

// standardTemplates converts the configured master template set into the
// service layer's immutable representation.
func standardTemplates(cfg *config.Config) []services.StandardCategoryTemplate {
	templates := make([]services.StandardCategoryTemplate, 0, len(cfg.StandardCategories))
	for _, sc := range cfg.StandardCategories {
		template := services.StandardCategoryTemplate{
			Name: sc.Name,
			Type: models.TransactionType(sc.Type),
		}
		if sc.LimitCents > 0 {
			limit := sc.LimitCents
			template.Limit = &limit
		}
		templates = append(templates, template)
	}
	return templates
}

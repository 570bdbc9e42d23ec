package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	mongoOptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/wms-platform/task-service/internal/application"
	"github.com/wms-platform/task-service/internal/domain"
	"github.com/wms-platform/task-service/internal/infrastructure/erp"
	mongoRepo "github.com/wms-platform/task-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/task-service/internal/routing"
	"github.com/wms-platform/task-service/pkg/errors"
	"github.com/wms-platform/task-service/pkg/kafka"
	"github.com/wms-platform/task-service/pkg/logging"
	"github.com/wms-platform/task-service/pkg/metrics"
	"github.com/wms-platform/task-service/pkg/middleware"
)

const serviceName = "task-service"

func main() {
	// Setup logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting task-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB
	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	defer cancelConnect()
	mongoClient, err := mongo.Connect(connectCtx, mongoOptions.Client().
		ApplyURI(config.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(10))
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	db := mongoClient.Database(config.MongoDatabase)
	logger.Info("Connected to MongoDB", "database", config.MongoDatabase)

	// Initialize Kafka producer
	producer := kafka.NewProducer(config.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize repositories and read models
	repo := mongoRepo.NewTaskRepository(db)
	catalog := mongoRepo.NewBinCatalog(db)
	freezes := mongoRepo.NewFreezeRegistry(db)
	ledger := mongoRepo.NewStockLedger(db)

	// Initialize the ERP document client
	erpClient := erp.NewClient(erp.DefaultConfig(config.ERPBaseURL), logger, m)

	// Initialize routing components
	allocator := routing.NewAllocator(ledger, catalog, logger)
	router := routing.NewRouter(catalog)

	// Initialize application service
	taskService := application.NewTaskApplicationService(
		repo,
		allocator,
		router,
		freezes,
		erpClient,
		catalog,
		producer,
		logger,
		m,
	)

	// Setup Gin router with middleware
	engine := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(engine, middlewareConfig)

	engine.Use(middleware.MetricsMiddleware(m))

	engine.NoRoute(middleware.NoRoute())
	engine.NoMethod(middleware.NoMethod())

	// Health check endpoints
	engine.GET("/health", middleware.HealthCheck(serviceName))
	engine.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return mongoClient.Ping(pingCtx, readpref.Primary())
	}))

	// Metrics endpoint
	engine.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	api := engine.Group("/api/v1/tasks")
	{
		// List endpoint first (before :taskId wildcard)
		api.GET("", listTasksHandler(taskService, logger))
		api.POST("", createTaskHandler(taskService, logger))
		api.GET("/:taskId", getTaskHandler(taskService, logger))
		api.POST("/:taskId/assign", assignTaskHandler(taskService, logger))
		api.POST("/:taskId/start", startTaskHandler(taskService, logger))
		api.POST("/:taskId/complete", completeTaskHandler(taskService, logger))
		api.POST("/:taskId/cancel", cancelTaskHandler(taskService, logger))
		api.GET("/:taskId/route", previewRouteHandler(taskService, logger))
		api.POST("/:taskId/route", applyRouteHandler(taskService, logger))
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr    string
	MongoURI      string
	MongoDatabase string
	ERPBaseURL    string
	Kafka         *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8010"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "task_db"),
		ERPBaseURL:    getEnv("ERP_BASE_URL", "http://localhost:8080"),
		Kafka: &kafka.Config{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP Handlers
func createTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			TaskID          string            `json:"taskId"`
			TaskType        string            `json:"taskType" binding:"required"`
			SourceWarehouse string            `json:"sourceWarehouse"`
			TargetWarehouse string            `json:"targetWarehouse"`
			Priority        int               `json:"priority"`
			RefDocType      string            `json:"refDocType"`
			RefDocID        string            `json:"refDocId"`
			Items           []domain.LineItem `json:"items"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := application.CreateTaskCommand{
			TaskID:          req.TaskID,
			TaskType:        req.TaskType,
			SourceWarehouse: req.SourceWarehouse,
			TargetWarehouse: req.TargetWarehouse,
			Priority:        req.Priority,
			RefDocType:      req.RefDocType,
			RefDocID:        req.RefDocID,
			Items:           req.Items,
		}

		task, err := service.CreateTask(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusCreated, task)
	}
}

func getTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetTaskQuery{TaskID: c.Param("taskId")}

		task, err := service.GetTask(c.Request.Context(), query)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func listTasksHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		// Default limit is 200, max is 1000
		limit := 200
		if limitStr := c.Query("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
				limit = parsed
				if limit > 1000 {
					limit = 1000
				}
			}
		}

		query := application.ListTasksQuery{
			Status:     c.Query("status"),
			TaskType:   c.Query("taskType"),
			AssignedTo: c.Query("assignedTo"),
			Warehouse:  c.Query("warehouse"),
			Limit:      limit,
		}

		tasks, err := service.ListTasks(c.Request.Context(), query)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, tasks)
	}
}

func assignTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			AssignedTo string `json:"assignedTo"`
		}
		// Body is optional: a task with a pre-set assignee needs no user
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		cmd := application.AssignTaskCommand{
			TaskID:     c.Param("taskId"),
			AssignedTo: req.AssignedTo,
		}

		task, err := service.AssignTask(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func startTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Operator string `json:"operator"`
		}
		// Body is optional: an assigned task starts under its assignee
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		cmd := application.StartTaskCommand{
			TaskID:   c.Param("taskId"),
			Operator: req.Operator,
		}

		task, err := service.StartTask(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func completeTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.CompleteTaskCommand{TaskID: c.Param("taskId")}

		result, err := service.CompleteTask(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func cancelTaskHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.CancelTaskCommand{TaskID: c.Param("taskId")}

		task, err := service.CancelTask(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, task)
	}
}

func previewRouteHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetRouteQuery{TaskID: c.Param("taskId")}

		route, err := service.PreviewRoute(c.Request.Context(), query)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, route)
	}
}

func applyRouteHandler(service *application.TaskApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		cmd := application.ApplyRouteCommand{TaskID: c.Param("taskId")}

		route, err := service.ApplyRoute(c.Request.Context(), cmd)
		if err != nil {
			respond(responder, err)
			return
		}

		c.JSON(http.StatusOK, route)
	}
}

func respond(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
	} else {
		responder.RespondInternalError(err)
	}
}

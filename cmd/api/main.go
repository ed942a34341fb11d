package main

import (
	"os"

	_ "compras-backend/api/swagger" // swagger docs
	"compras-backend/internal/database"
	"compras-backend/internal/handler"
	"compras-backend/internal/middleware"
	"compras-backend/internal/repository"
	"compras-backend/internal/service"
	"compras-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Purchase Order Management API
// @version         1.0
// @description     Purchase orders, suppliers, master data and the token-based approval flow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("no configs/.env file found, using environment")
	}

	dsn := "postgres://" + envOr("DB_USER", "postgres") + ":" + envOr("DB_PASSWORD", "postgres") +
		"@" + envOr("DB_HOST", "localhost") + ":" + envOr("DB_PORT", "5432") +
		"/" + envOr("DB_NAME", "compras") + "?sslmode=" + envOr("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	orderRepo := repository.NewOrderRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	approverRepo := repository.NewApproverRepository(db)
	masterDataRepo := repository.NewMasterDataRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	tokenService := service.NewTokenService(orderRepo)
	sequenceService := service.NewSequenceService(sequenceRepo)
	approvalService := service.NewApprovalService(orderRepo, approverRepo, auditRepo, tokenService, txManager, wsHub, log)
	orderService := service.NewOrderService(orderRepo, auditRepo, sequenceService, tokenService, txManager)
	supplierService := service.NewSupplierService(supplierRepo)
	masterDataService := service.NewMasterDataService(masterDataRepo)
	approverService := service.NewApproverService(approverRepo)
	reportService := service.NewReportService(db)
	userService := service.NewUserService(userRepo)

	// Initialize Handlers
	aprobacionHandler := handler.NewAprobacionHandler(approvalService, log)
	sequenceHandler := handler.NewSequenceHandler(sequenceService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	supplierHandler := handler.NewSupplierHandler(supplierService, log)
	masterDataHandler := handler.NewMasterDataHandler(masterDataService, log)
	approverHandler := handler.NewApproverHandler(approverService, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	userHandler := handler.NewUserHandler(userService, log)

	// Set up Gin Router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for the back-office dashboard
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	aprobacionHandler.RegisterRoutes(router.Group(""))
	sequenceHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	supplierHandler.RegisterRoutes(router.Group(""))
	masterDataHandler.RegisterRoutes(router.Group(""))
	approverHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")
	log.WithField("port", port).Info("server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

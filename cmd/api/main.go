package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/logging"
	"backend/internal/middleware"
	"backend/internal/password"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Hotel Management API
// @version         1.0
// @description     Customer, user and role/permission administration with resolver-backed authorization.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			log.Fatal("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		cfg.JWTSecret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}

	logs := logging.Setup(cfg.LogDir, cfg.LogLevel)
	defer logs.Close()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Migrate(db, false); err != nil {
		log.Println("WARNING: Failed to migrate schema:", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, customerRepo, auditRepo, txManager, logs, service.UserServiceConfig{
		PasswordPolicy: password.Policy{
			Active:            cfg.PasswordComplexityActive,
			MinimumCharacters: cfg.MinimumPasswordCharacters,
		},
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  time.Hour,
	})
	customerService := service.NewCustomerService(customerRepo, userRepo, auditRepo, txManager, logs)
	accessService := service.NewAccessService(grantRepo, userRepo, auditRepo, txManager, logs, wsHub)
	authzService := service.NewAuthzService(grantRepo)
	auditService := service.NewAuditService(auditRepo)

	auth := middleware.NewAuthMiddleware([]byte(cfg.JWTSecret), authzService)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, auth)
	customerHandler := handler.NewCustomerHandler(customerService, auth)
	accessHandler := handler.NewAccessHandler(accessService, authzService, auth)
	auditHandler := handler.NewAuditHandler(auditService, auth)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"} // Frontend URL
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

	// WebSocket endpoint for admin event push
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, []byte(cfg.JWTSecret))
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	customerHandler.RegisterRoutes(router.Group(""))
	accessHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.Println("Server starting on port " + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/controllers"
	container "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Container"
	registry "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Registry"
	implementation "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Repository/Implementation"

	// Auth imports
	authService "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/implementation/auth"
	jwt "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/implementation/jwt"
	authMiddleware "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/middleware"
	api_models "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models/api"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting Registry API Service")

	// Connect backing stores
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ctr.InitializeStores(ctx); err != nil {
		logger.FatalWithError(err, "Failed to initialize stores")
	}

	// Create repositories and core services
	tenantRepo := implementation.NewMongoTenantRepository(ctr.GetTenantsCollection())
	registryManager := registry.NewManager(ctr.GetStore(), logger)

	// Get configuration
	config := ctr.GetConfig()

	// Initialize JWT service for token issuance and validation
	jwtConfig := api_models.Config{
		SecretKey:            config.Auth.JWTSecretKey,
		AccessTokenDuration:  config.Auth.AccessTokenDuration,
		RefreshTokenDuration: config.Auth.RefreshTokenDuration,
		Issuer:               config.Auth.JWTIssuer,
	}
	jwtService := jwt.NewService(jwtConfig)

	// Create auth middleware
	middlewareConfig := authMiddleware.Config{
		AccessTokenHeader: "Authorization",
		AccessTokenCookie: "access_token",
	}
	authMiddlewareInstance := authMiddleware.NewAuthMiddleware(jwtService, middlewareConfig)

	// Initialize auth service and bootstrap admin account
	authServiceInstance := authService.NewAuthService(tenantRepo, jwtService, logger)
	if err := authServiceInstance.EnsureAdmin(ctx, authService.AdminConfig{
		Email:    config.Auth.Admin.Email,
		Password: config.Auth.Admin.Password,
	}); err != nil {
		logger.FatalWithError(err, "Failed to initialize admin account")
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	authController := controllers.NewAuthController(authServiceInstance, jwtService, tenantRepo)
	registryController := controllers.NewRegistryController(registryManager, logger, authMiddlewareInstance)
	diagnosticsController := controllers.NewDiagnosticsController(registryManager, logger, authMiddlewareInstance)
	tenantController := controllers.NewTenantController(tenantRepo, authServiceInstance, logger, authMiddlewareInstance)
	healthController := controllers.NewHealthController(ctr.GetHealthChecker(), logger)

	authController.RegisterRoutes(router)
	registryController.RegisterRoutes(router)
	diagnosticsController.RegisterRoutes(router)
	tenantController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	// Get port from configuration
	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("Registry API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}

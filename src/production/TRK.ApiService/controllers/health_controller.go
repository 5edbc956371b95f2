package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/health"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
)

// HealthController handles health requests
type HealthController struct {
	checker *health.HealthChecker
	logger  *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(checker *health.HealthChecker, logger *logger.Logger) *HealthController {
	return &HealthController{
		checker: checker,
		logger:  logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	// Public health endpoints
	router.GET("/health", c.Health)
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) Health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	status := c.checker.GetHealthStatus(reqCtx)
	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, status)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	redisOK := c.checker.PingRedis(reqCtx) == nil
	mongoOK := c.checker.PingMongo(reqCtx) == nil

	code := http.StatusOK
	if !redisOK || !mongoOK {
		code = http.StatusServiceUnavailable
	}

	ctx.JSON(code, gin.H{
		"status": "ready",
		"redis":  redisOK,
		"mongo":  mongoOK,
	})
}

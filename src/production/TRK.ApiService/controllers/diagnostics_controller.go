package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/middleware"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	registry "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Registry"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

// DiagnosticsController exposes the read-only tracker pipeline health view
type DiagnosticsController struct {
	manager        *registry.Manager
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewDiagnosticsController creates a new diagnostics controller
func NewDiagnosticsController(manager *registry.Manager, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *DiagnosticsController {
	return &DiagnosticsController{
		manager:        manager,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the diagnostics routes with Gin
func (c *DiagnosticsController) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin")
	{
		admin.GET("/trackers/:tracker_id/diagnostics",
			c.authMiddleware.Authenticate(), c.authMiddleware.RequireAdmin(), c.InspectTracker)
	}
}

func (c *DiagnosticsController) InspectTracker(ctx *gin.Context) {
	identity := middleware.GetIdentityFromGinContext(ctx)
	trackerID := ctx.Param("tracker_id")

	diag, err := c.manager.Inspect(ctx.Request.Context(), identity, trackerID)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrInvalidInput):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, registry.ErrNotAuthorized):
			ctx.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		case errors.Is(err, store.ErrUnavailable):
			c.logger.ErrorWithError(err, "diagnostics store unavailable")
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "diagnostics temporarily unavailable"})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, diag)
}

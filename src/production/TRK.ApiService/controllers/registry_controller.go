package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/middleware"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	registry "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Registry"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
)

// RegistryController handles tenant tracker registry requests
type RegistryController struct {
	manager        *registry.Manager
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewRegistryController creates a new registry controller
func NewRegistryController(manager *registry.Manager, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *RegistryController {
	return &RegistryController{
		manager:        manager,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the registry routes with Gin
func (c *RegistryController) RegisterRoutes(router *gin.Engine) {
	trackers := router.Group("/trackers")
	{
		// Identity is resolved but never required: anonymous callers get
		// degraded results per the boundary contract, not 401.
		trackers.GET("", c.authMiddleware.ResolveIdentity(), c.ListTrackers)
		trackers.POST("", c.authMiddleware.ResolveIdentity(), c.AddTrackers)
		trackers.DELETE("", c.authMiddleware.ResolveIdentity(), c.RemoveTrackers)
	}
}

type mutateTrackersRequest struct {
	TrackerIDs []string `json:"tracker_ids"`
}

func (c *RegistryController) ListTrackers(ctx *gin.Context) {
	identity := middleware.GetIdentityFromGinContext(ctx)

	trackerIDs, err := c.manager.List(ctx.Request.Context(), identity)
	if err != nil {
		c.registryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, trkmodels.TrackerList{TrackerIDs: trackerIDs})
}

func (c *RegistryController) AddTrackers(ctx *gin.Context) {
	identity := middleware.GetIdentityFromGinContext(ctx)

	var req mutateTrackersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.manager.Add(ctx.Request.Context(), identity, req.TrackerIDs)
	if err != nil {
		c.registryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *RegistryController) RemoveTrackers(ctx *gin.Context) {
	identity := middleware.GetIdentityFromGinContext(ctx)

	var req mutateTrackersRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := c.manager.Remove(ctx.Request.Context(), identity, req.TrackerIDs)
	if err != nil {
		c.registryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// registryError maps core registry errors onto the HTTP boundary.
func (c *RegistryController) registryError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, registry.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrOwnershipConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrQuotaExceeded):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		c.logger.ErrorWithError(err, "registry store unavailable")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "registry temporarily unavailable"})
	default:
		c.logger.ErrorWithError(err, "registry operation failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

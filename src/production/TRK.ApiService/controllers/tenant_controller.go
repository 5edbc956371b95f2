package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authService "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/implementation/auth"
	"gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/middleware"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	interfaces "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Repository/Interfaces"
)

// TenantController handles tenant directory management requests
type TenantController struct {
	tenantRepo     interfaces.TenantRepository
	authService    *authService.AuthService
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewTenantController creates a new tenant controller
func NewTenantController(tenantRepo interfaces.TenantRepository, service *authService.AuthService, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *TenantController {
	return &TenantController{
		tenantRepo:     tenantRepo,
		authService:    service,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the tenant routes with Gin
func (c *TenantController) RegisterRoutes(router *gin.Engine) {
	tenants := router.Group("/tenants")
	{
		// Admin only - tenant provisioning and lifecycle
		tenants.POST("", c.authMiddleware.Authenticate(), c.authMiddleware.RequireAdmin(), c.CreateTenant)
		tenants.GET("", c.authMiddleware.Authenticate(), c.authMiddleware.RequireAdmin(), c.ListTenants)
		tenants.GET("/:tenant_id", c.authMiddleware.Authenticate(), c.authMiddleware.RequireAdmin(), c.GetTenant)
		tenants.PATCH("/:tenant_id", c.authMiddleware.Authenticate(), c.authMiddleware.RequireAdmin(), c.UpdateTenant)
		tenants.DELETE("/:tenant_id", c.authMiddleware.Authenticate(), c.authMiddleware.RequireAdmin(), c.DeleteTenant)
	}
}

func (c *TenantController) CreateTenant(ctx *gin.Context) {
	var req authService.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenant, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, tenant)
}

func (c *TenantController) ListTenants(ctx *gin.Context) {
	tenants, err := c.tenantRepo.GetAll(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (c *TenantController) GetTenant(ctx *gin.Context) {
	tenantID := ctx.Param("tenant_id")

	tenant, err := c.tenantRepo.GetByTenantID(ctx.Request.Context(), tenantID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tenant == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}

	ctx.JSON(http.StatusOK, tenant)
}

type updateTenantRequest struct {
	Name     *string `json:"name,omitempty"`
	PlanTier *string `json:"plan_tier,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func (c *TenantController) UpdateTenant(ctx *gin.Context) {
	tenantID := ctx.Param("tenant_id")

	tenant, err := c.tenantRepo.GetByTenantID(ctx.Request.Context(), tenantID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tenant == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}

	var req updateTenantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.PlanTier != nil {
		tenant.PlanTier = *req.PlanTier
	}
	if req.Active != nil {
		tenant.Active = *req.Active
	}

	if err := c.tenantRepo.Update(ctx.Request.Context(), tenant); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, tenant)
}

func (c *TenantController) DeleteTenant(ctx *gin.Context) {
	tenantID := ctx.Param("tenant_id")
	hardDelete := ctx.DefaultQuery("hard", "false") == "true"

	if err := c.tenantRepo.Delete(ctx.Request.Context(), tenantID, hardDelete); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": true})
}

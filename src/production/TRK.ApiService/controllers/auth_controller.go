package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	authService "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/implementation/auth"
	jwt "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/implementation/jwt"
	interfaces "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Repository/Interfaces"
)

// AuthController handles authentication requests
type AuthController struct {
	authService *authService.AuthService
	jwtService  *jwt.Service
	tenantRepo  interfaces.TenantRepository
}

// NewAuthController creates a new auth controller
func NewAuthController(service *authService.AuthService, jwtService *jwt.Service, tenantRepo interfaces.TenantRepository) *AuthController {
	return &AuthController{
		authService: service,
		jwtService:  jwtService,
		tenantRepo:  tenantRepo,
	}
}

// RegisterRoutes registers the auth routes with Gin
func (c *AuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", c.Login)
		auth.POST("/refresh", c.Refresh)
		auth.POST("/logout", c.Logout)
	}
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req authService.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, tokens, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx.SetCookie("access_token", tokens.AccessToken, int(time.Until(time.Unix(tokens.ExpiresAt, 0)).Seconds()), "/", "", false, true)
	ctx.JSON(http.StatusOK, response)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (c *AuthController) Refresh(ctx *gin.Context) {
	var req refreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := c.jwtService.RefreshTokens(req.RefreshToken, c.tenantRepo)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, tokens)
}

// Logout clears the access token cookie
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie("access_token", "", -1, "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

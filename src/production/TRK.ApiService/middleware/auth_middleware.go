package middleware

import (
	"net/http"
	"strings"

	jwt "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/implementation/jwt"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"

	"github.com/gin-gonic/gin"
)

// Key types for request context
type contextKey string

const (
	// Context keys
	IdentityContextKey    contextKey = "caller_identity"
	TokenIDContextKey     contextKey = "token_id"
	AccessTokenContextKey contextKey = "access_token"
)

// AuthMiddleware provides middleware functions for authentication and authorization
type AuthMiddleware struct {
	jwtService *jwt.Service
	config     Config
}

// Config holds middleware configuration
type Config struct {
	// HTTP header name for the access token
	AccessTokenHeader string

	// Cookie name for the access token (optional alternative to the header)
	AccessTokenCookie string
}

// DefaultConfig returns a default middleware configuration
func DefaultConfig() Config {
	return Config{
		AccessTokenHeader: "Authorization",
		AccessTokenCookie: "access_token",
	}
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *jwt.Service, config Config) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		config:     config,
	}
}

// extractToken gets a token from either header or cookie
func extractToken(r *http.Request, headerName, cookieName string) string {
	token := r.Header.Get(headerName)
	if token != "" {
		// Handle Authorization: Bearer token format
		if strings.HasPrefix(token, "Bearer ") {
			return strings.TrimPrefix(token, "Bearer ")
		}
		return token
	}

	if cookieName != "" {
		cookie, err := r.Cookie(cookieName)
		if err == nil {
			return cookie.Value
		}
	}

	return ""
}

// ResolveIdentity resolves the caller identity when a valid token is
// present and continues anonymously otherwise. Registry endpoints use
// this so unauthenticated callers get degraded results instead of 401.
func (m *AuthMiddleware) ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractToken(c.Request, m.config.AccessTokenHeader, m.config.AccessTokenCookie)
		if accessToken == "" {
			c.Next()
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(accessToken)
		if err != nil {
			// An unusable token degrades to anonymous rather than failing.
			c.Next()
			return
		}

		c.Set(string(IdentityContextKey), &trkmodels.Identity{
			TenantID: claims.TenantID,
			Role:     claims.Role,
			PlanTier: claims.PlanTier,
		})
		c.Set(string(TokenIDContextKey), claims.TokenID)
		c.Set(string(AccessTokenContextKey), accessToken)

		c.Next()
	}
}

// Authenticate middleware verifies the access token and rejects anonymous callers
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractToken(c.Request, m.config.AccessTokenHeader, m.config.AccessTokenCookie)
		if accessToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(accessToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			c.Abort()
			return
		}

		c.Set(string(IdentityContextKey), &trkmodels.Identity{
			TenantID: claims.TenantID,
			Role:     claims.Role,
			PlanTier: claims.PlanTier,
		})
		c.Set(string(TokenIDContextKey), claims.TokenID)
		c.Set(string(AccessTokenContextKey), accessToken)

		c.Next()
	}
}

// RequireAdmin ensures the caller has the admin role
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentityFromGinContext(c)
		if !identity.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentityFromGinContext returns the resolved caller identity, or nil
// for anonymous callers.
func GetIdentityFromGinContext(c *gin.Context) *trkmodels.Identity {
	value, ok := c.Get(string(IdentityContextKey))
	if !ok {
		return nil
	}
	identity, ok := value.(*trkmodels.Identity)
	if !ok {
		return nil
	}
	return identity
}

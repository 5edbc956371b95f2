package auth

import (
	"context"
	"errors"

	jwt "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/implementation/jwt"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	api_models "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models/api"
	interfaces "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// AuthService aggregates tenant auth operations
type AuthService struct {
	tenantRepo interfaces.TenantRepository
	jwtService *jwt.Service
	logger     *logger.Logger
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	PlanTier string `json:"plan_tier"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenID     string `json:"token_id"`
	ExpiresAt   int64  `json:"expires_at"`
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	PlanTier    string `json:"plan_tier"`
}

// AdminConfig holds the bootstrap admin account
type AdminConfig struct {
	Email    string
	Password string
}

// NewAuthService creates a new auth service
func NewAuthService(tenantRepo interfaces.TenantRepository, jwtService *jwt.Service, log *logger.Logger) *AuthService {
	return &AuthService{
		tenantRepo: tenantRepo,
		jwtService: jwtService,
		logger:     log.WithComponent("auth"),
	}
}

// Register creates a new tenant account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*trkmodels.Tenant, error) {
	existing, err := s.tenantRepo.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, errors.New("email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if req.Role == "" {
		req.Role = trkmodels.RoleTenant
	}
	if req.PlanTier == "" {
		req.PlanTier = "free"
	}

	tenant := &trkmodels.Tenant{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         req.Role,
		PlanTier:     req.PlanTier,
		Active:       true,
	}
	return s.tenantRepo.Create(ctx, tenant)
}

// Login authenticates a tenant and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, *api_models.TokenPair, error) {
	tenant, err := s.tenantRepo.GetByEmail(ctx, req.Email)
	if err != nil || tenant == nil {
		return nil, nil, errors.New("invalid credentials")
	}
	if !tenant.Active {
		return nil, nil, errors.New("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(tenant.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	tokens, err := s.jwtService.GenerateTokens(tenant.TenantID, tenant.Role, tenant.PlanTier)
	if err != nil {
		return nil, nil, err
	}

	response := &AuthResponse{
		AccessToken: tokens.AccessToken,
		TokenID:     tokens.TokenID,
		ExpiresAt:   tokens.ExpiresAt,
		TenantID:    tenant.TenantID,
		Name:        tenant.Name,
		Email:       tenant.Email,
		Role:        tenant.Role,
		PlanTier:    tenant.PlanTier,
	}
	return response, tokens, nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		s.logger.Debug("no bootstrap admin configured, skipping")
		return nil
	}

	existing, err := s.tenantRepo.GetByEmail(ctx, cfg.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.Register(ctx, RegisterRequest{
		Name:     "Administrator",
		Email:    cfg.Email,
		Password: cfg.Password,
		Role:     trkmodels.RoleAdmin,
	})
	if err != nil {
		return err
	}

	s.logger.Info("bootstrap admin account created")
	return nil
}

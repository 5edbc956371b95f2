package trkmodels

// Caller roles resolved from an access token.
const (
	RoleAdmin    = "admin"
	RoleReseller = "reseller"
	RoleTenant   = "tenant"
)

// Identity is the resolved caller identity passed into the registry core.
// A nil *Identity means the caller is anonymous. The core never sees
// sessions, cookies or tokens, only this capability record.
type Identity struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	PlanTier string `json:"plan_tier"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// IsAuthenticated reports whether the identity resolves to a tenant.
func (i *Identity) IsAuthenticated() bool {
	return i != nil && i.TenantID != ""
}

package interfaces

import (
	"context"

	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
)

// TenantRepository defines the interface for tenant directory operations
type TenantRepository interface {
	Create(ctx context.Context, tenant *trkmodels.Tenant) (*trkmodels.Tenant, error)
	GetByTenantID(ctx context.Context, tenantID string) (*trkmodels.Tenant, error)
	GetByEmail(ctx context.Context, email string) (*trkmodels.Tenant, error)
	GetAll(ctx context.Context) ([]*trkmodels.Tenant, error)
	Update(ctx context.Context, tenant *trkmodels.Tenant) error
	Delete(ctx context.Context, tenantID string, hardDelete bool) error
}

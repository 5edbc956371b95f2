package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	trkmodels "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoTenantRepository struct {
	coll *mongo.Collection
}

func NewMongoTenantRepository(coll *mongo.Collection) *MongoTenantRepository {
	return &MongoTenantRepository{coll: coll}
}

// Create tenant (idempotent upsert on tenant_id)
func (r *MongoTenantRepository) Create(ctx context.Context, tenant *trkmodels.Tenant) (*trkmodels.Tenant, error) {
	if tenant.TenantID == "" {
		tenant.TenantID = uuid.New().String()
	}
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":          tenant.Name,
			"email":         tenant.Email,
			"password_hash": tenant.PasswordHash,
			"role":          tenant.Role,
			"plan_tier":     tenant.PlanTier,
			"active":        tenant.Active,
			"updated_at":    tenant.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"tenant_id":  tenant.TenantID,
			"created_at": tenant.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"tenant_id": tenant.TenantID}, update, opts); err != nil {
		return nil, err
	}

	return tenant, nil
}

// Read tenants
func (r *MongoTenantRepository) GetByTenantID(ctx context.Context, tenantID string) (*trkmodels.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var tenant trkmodels.Tenant
	err := r.coll.FindOne(ctx, bson.M{"tenant_id": tenantID}).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &tenant, nil
}

func (r *MongoTenantRepository) GetByEmail(ctx context.Context, email string) (*trkmodels.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var tenant trkmodels.Tenant
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &tenant, nil
}

func (r *MongoTenantRepository) GetAll(ctx context.Context) ([]*trkmodels.Tenant, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tenants []*trkmodels.Tenant
	for cursor.Next(ctx) {
		var tenant trkmodels.Tenant
		if err := cursor.Decode(&tenant); err != nil {
			return nil, err
		}
		tenants = append(tenants, &tenant)
	}

	return tenants, cursor.Err()
}

// Update tenant
func (r *MongoTenantRepository) Update(ctx context.Context, tenant *trkmodels.Tenant) error {
	tenant.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":          tenant.Name,
			"email":         tenant.Email,
			"password_hash": tenant.PasswordHash,
			"role":          tenant.Role,
			"plan_tier":     tenant.PlanTier,
			"active":        tenant.Active,
			"updated_at":    tenant.UpdatedAt,
		},
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"tenant_id": tenant.TenantID}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

// Delete tenant
func (r *MongoTenantRepository) Delete(ctx context.Context, tenantID string, hardDelete bool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if hardDelete {
		result, err := r.coll.DeleteOne(ctx, bson.M{"tenant_id": tenantID})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	}

	// Soft delete - set active to false
	update := bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"tenant_id": tenantID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

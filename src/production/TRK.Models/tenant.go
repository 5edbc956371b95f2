package trkmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tenant is a customer account in the tenant directory. The registry core
// never reads this document directly; it only sees the plan tier carried by
// the resolved caller identity.
type Tenant struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID     string             `bson:"tenant_id" json:"tenant_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	PlanTier     string             `bson:"plan_tier" json:"plan_tier"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

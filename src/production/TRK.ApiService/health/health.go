package health

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthChecker provides health check functionality
type HealthChecker struct {
	redis *redis.Client
	mongo *mongo.Client
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(redisClient *redis.Client, mongoClient *mongo.Client) *HealthChecker {
	return &HealthChecker{redis: redisClient, mongo: mongoClient}
}

// PingRedis checks if the Redis connection is healthy
func (h *HealthChecker) PingRedis(ctx context.Context) error {
	if h.redis == nil {
		return fmt.Errorf("redis connection is nil")
	}
	return h.redis.Ping(ctx).Err()
}

// PingMongo checks if the MongoDB connection is healthy
func (h *HealthChecker) PingMongo(ctx context.Context) error {
	if h.mongo == nil {
		return fmt.Errorf("mongo connection is nil")
	}
	return h.mongo.Ping(ctx, readpref.Primary())
}

// GetHealthStatus returns the current health status
func (h *HealthChecker) GetHealthStatus(ctx context.Context) map[string]interface{} {
	checks := make(map[string]interface{})
	status := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"checks":    checks,
	}

	overallStatus := "ok"

	if err := h.PingRedis(ctx); err != nil {
		overallStatus = "degraded"
		checks["redis"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		checks["redis"] = map[string]interface{}{"status": "ok"}
	}

	if err := h.PingMongo(ctx); err != nil {
		overallStatus = "degraded"
		checks["mongo"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		checks["mongo"] = map[string]interface{}{"status": "ok"}
	}

	status["status"] = overallStatus
	return status
}

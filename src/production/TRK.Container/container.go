package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.ApiService/health"
	config "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Config"
	logger "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Logger"
	store "gitlab.com/tracknorth1/trk.fleet_server/src/production/TRK.Store"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ApiContainer manages dependencies for the registry API service
type ApiContainer struct {
	config *config.Config
	logger *logger.Logger

	redisClient *redis.Client
	mongoClient *mongo.Client

	healthChecker *health.HealthChecker

	// Mutex for thread-safe access
	mu sync.RWMutex

	// Cleanup functions
	cleanupFuncs []func() error
}

// IngestorContainer manages dependencies for the telemetry ingestor service
type IngestorContainer struct {
	config *config.IngestorConfig
	logger *logger.Logger

	redisClient *redis.Client

	cleanupFuncs []func() error
}

// NewApiContainer creates a new container for the registry API service
func NewApiContainer() (*ApiContainer, error) {
	cfg, err := config.LoadApiConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load API configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &ApiContainer{
		config: cfg,
		logger: log,
	}, nil
}

// NewIngestorContainer creates a new container for the telemetry ingestor service
func NewIngestorContainer() (*IngestorContainer, error) {
	cfg, err := config.LoadIngestorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load ingestor configuration: %w", err)
	}

	log := logger.NewLogger(&cfg.Logging)

	return &IngestorContainer{
		config: cfg,
		logger: log,
	}, nil
}

// InitializeStores connects Redis and MongoDB
func (c *ApiContainer) InitializeStores(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	redisClient, err := store.ConnectRedis(ctx, &c.config.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	c.redisClient = redisClient
	c.cleanupFuncs = append(c.cleanupFuncs, redisClient.Close)

	mongoClient, err := connectMongo(ctx, &c.config.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect mongo: %w", err)
	}
	c.mongoClient = mongoClient
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return mongoClient.Disconnect(disconnectCtx)
	})

	c.healthChecker = health.NewHealthChecker(redisClient, mongoClient)
	return nil
}

// InitializeStore connects Redis for the ingestor
func (c *IngestorContainer) InitializeStore(ctx context.Context) error {
	redisClient, err := store.ConnectRedis(ctx, &c.config.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	c.redisClient = redisClient
	c.cleanupFuncs = append(c.cleanupFuncs, redisClient.Close)
	return nil
}

func connectMongo(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// GetConfig returns the configuration
func (c *ApiContainer) GetConfig() *config.Config {
	return c.config
}

// GetConfig returns the ingestor configuration
func (c *IngestorContainer) GetConfig() *config.IngestorConfig {
	return c.config
}

// GetLogger returns the logger
func (c *ApiContainer) GetLogger() *logger.Logger {
	return c.logger
}

// GetLogger returns the logger
func (c *IngestorContainer) GetLogger() *logger.Logger {
	return c.logger
}

// GetStore returns the registry key-value store adapter
func (c *ApiContainer) GetStore() store.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return store.NewRedisStore(c.redisClient)
}

// GetStore returns the registry key-value store adapter
func (c *IngestorContainer) GetStore() store.Store {
	return store.NewRedisStore(c.redisClient)
}

// GetRedisClient returns the raw Redis client for health probes
func (c *IngestorContainer) GetRedisClient() *redis.Client {
	return c.redisClient
}

// GetHealthChecker returns the health checker
func (c *ApiContainer) GetHealthChecker() *health.HealthChecker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthChecker
}

// GetTenantsCollection returns the tenant directory collection
func (c *ApiContainer) GetTenantsCollection() *mongo.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mongoClient.Database(c.config.Mongo.Database).Collection(c.config.Mongo.TenantsCollection)
}

// Shutdown runs all registered cleanup functions
func (c *ApiContainer) Shutdown(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			c.logger.ErrorWithError(err, "cleanup failed")
		}
	}
	c.cleanupFuncs = nil
}

// Shutdown runs all registered cleanup functions
func (c *IngestorContainer) Shutdown(_ context.Context) {
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			c.logger.ErrorWithError(err, "cleanup failed")
		}
	}
	c.cleanupFuncs = nil
}

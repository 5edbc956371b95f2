package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Redis (registry key-value store) configuration
	Redis RedisConfig `json:"redis"`

	// MongoDB (tenant directory) configuration
	Mongo MongoConfig `json:"mongo"`

	// MQTT configuration
	MQTT MQTTConfig `json:"mqtt"`

	// Auth configuration
	Auth AuthConfig `json:"auth"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// RedisConfig holds configuration for the registry key-value store
type RedisConfig struct {
	Addr         string        `json:"addr"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// MongoConfig holds configuration for the tenant directory store
type MongoConfig struct {
	URI               string        `json:"uri"`
	Database          string        `json:"database"`
	TenantsCollection string        `json:"tenants_collection"`
	ConnectTimeout    time.Duration `json:"connect_timeout"`
}

// MQTTConfig holds MQTT-related configuration
type MQTTConfig struct {
	BrokerHost  string        `json:"broker_host"`
	BrokerPort  int           `json:"broker_port"`
	BrokerUser  string        `json:"broker_user"`
	BrokerPass  string        `json:"broker_pass"`
	UseTLS      bool          `json:"use_tls"`
	CACertPath  string        `json:"ca_cert_path"`
	Topic       string        `json:"topic"`
	ClientID    string        `json:"client_id"`
	SharedGroup string        `json:"shared_group"`
	KeepAlive   time.Duration `json:"keep_alive"`
	PingTimeout time.Duration `json:"ping_timeout"`
	BatchSize   int           `json:"batch_size"`
	BatchWindow time.Duration `json:"batch_window"`
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecretKey         string        `json:"jwt_secret_key"`
	JWTIssuer            string        `json:"jwt_issuer"`
	AccessTokenDuration  time.Duration `json:"access_token_duration"`
	RefreshTokenDuration time.Duration `json:"refresh_token_duration"`
	Admin                AdminConfig   `json:"admin"`
}

// AdminConfig holds the bootstrap admin account configuration
type AdminConfig struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// IngestorConfig holds configuration for the telemetry ingestor service
type IngestorConfig struct {
	Server  ServerConfig  `json:"server"`
	Redis   RedisConfig   `json:"redis"`
	MQTT    MQTTConfig    `json:"mqtt"`
	Logging LoggingConfig `json:"logging"`
}

// LoadApiConfig loads configuration for the registry API service
func LoadApiConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	// Environment variables can also be set directly
	if err := godotenv.Load(); err != nil {
		// Silently ignore .env file loading errors
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("API_PORT", "9001"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Redis:   loadRedisConfig(),
		Mongo:   loadMongoConfig(),
		MQTT:    loadMQTTConfig(),
		Auth:    loadAuthConfig(),
		Logging: loadLoggingConfig(),
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization"}),
			ExposedHeaders:   getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getInt("CORS_MAX_AGE", 300),
		},
	}

	return config, nil
}

// LoadIngestorConfig loads configuration for the telemetry ingestor service
func LoadIngestorConfig() (*IngestorConfig, error) {
	if err := godotenv.Load(); err != nil {
		// Silently ignore .env file loading errors
	}

	config := &IngestorConfig{
		Server: ServerConfig{
			Port:         getEnv("INGESTOR_PORT", "9003"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Redis:   loadRedisConfig(),
		MQTT:    loadMQTTConfig(),
		Logging: loadLoggingConfig(),
	}

	return config, nil
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getInt("REDIS_DB", 0),
		DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func loadMongoConfig() MongoConfig {
	return MongoConfig{
		URI:               getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:          getEnv("MONGODB_DATABASE", "trkfleet"),
		TenantsCollection: getEnv("MONGODB_TENANTS_COLLECTION", "tenants"),
		ConnectTimeout:    getDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
	}
}

func loadMQTTConfig() MQTTConfig {
	return MQTTConfig{
		BrokerHost:  getEnv("BROKER_HOST", "localhost"),
		BrokerPort:  getInt("BROKER_PORT", 1883),
		BrokerUser:  getEnv("BROKER_USER", ""),
		BrokerPass:  getEnv("BROKER_PASS", ""),
		UseTLS:      getBool("BROKER_TLS", false),
		CACertPath:  getEnv("BROKER_CA_CERT", ""),
		Topic:       getEnv("MQTT_TOPIC", "trackers/+/position"),
		ClientID:    getEnv("MQTT_CLIENT_ID", "trk-ingestor"),
		SharedGroup: getEnv("MQTT_SHARED_GROUP", ""),
		KeepAlive:   getDuration("MQTT_KEEP_ALIVE", 30*time.Second),
		PingTimeout: getDuration("MQTT_PING_TIMEOUT", 10*time.Second),
		BatchSize:   getInt("INGEST_BATCH_SIZE", 256),
		BatchWindow: getDuration("INGEST_BATCH_WINDOW", 2*time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecretKey:         getEnv("JWT_SECRET_KEY", ""),
		JWTIssuer:            getEnv("JWT_ISSUER", "trk-fleet-server"),
		AccessTokenDuration:  getDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
		RefreshTokenDuration: getDuration("REFRESH_TOKEN_DURATION", 7*24*time.Hour),
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:        getEnv("LOG_LEVEL", "info"),
		Format:       getEnv("LOG_FORMAT", "json"),
		Output:       getEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: getBool("LOG_ENABLE_CALLER", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return parsed
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

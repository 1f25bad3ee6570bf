package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	NewRelic NewRelicConfig
	Logger   LoggerConfig
	Tracking TrackingConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains JWT authentication configuration. An empty Secret
// disables token checks on the relay.
type JWTConfig struct {
	Secret string
	Issuer string
}

// NewRelicConfig contains APM configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	ForwardLogs bool
}

// LoggerConfig contains logging configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}

// TrackingConfig contains the client-side tracking settings
type TrackingConfig struct {
	Role                Role
	ActorID             string
	WebSocketURL        string
	APIBaseURL          string
	APIToken            string
	HTTPTimeout         time.Duration
	HealthCheckInterval time.Duration
	SampleInterval      time.Duration
	// Radius used by the relay for passenger fan-out and nearby lookups
	SearchRadiusKm float64
}

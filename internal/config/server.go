package config

import (
	"fmt"
	"time"

	"github.com/rezkam/todo/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Store           StoreConfig
	HTTP            HTTPConfig
	GRPC            GRPCConfig
	Todo            TodoConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"TODO_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"TODO_HTTP_HOST"`
	Port              string        `env:"TODO_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"TODO_HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `env:"TODO_HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout       time.Duration `env:"TODO_HTTP_IDLE_TIMEOUT" default:"120s"`
	ReadHeaderTimeout time.Duration `env:"TODO_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	MaxHeaderBytes    int           `env:"TODO_HTTP_MAX_HEADER_BYTES" default:"1048576"`
	MaxBodyBytes      int64         `env:"TODO_HTTP_MAX_BODY_BYTES" default:"65536"`
}

// GRPCConfig holds the gRPC health server configuration.
type GRPCConfig struct {
	Enabled        bool          `env:"TODO_GRPC_ENABLED" default:"true"`
	Port           string        `env:"TODO_GRPC_PORT" default:"9090"`
	HealthInterval time.Duration `env:"TODO_HEALTH_INTERVAL" default:"15s"`
}

// TodoConfig holds todo service configuration.
type TodoConfig struct {
	RequireCompletionMessage bool `env:"TODO_REQUIRE_COMPLETION_MESSAGE" default:"false" toml:"require_completion_message"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"TODO_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"todo"`
}

// Validate validates server configuration that spans sections.
func (c *ServerConfig) Validate() error {
	if c.HTTP.Port == "" {
		return fmt.Errorf("TODO_HTTP_PORT is required")
	}
	if c.GRPC.Enabled && c.GRPC.Port == c.HTTP.Port {
		return fmt.Errorf("TODO_GRPC_PORT and TODO_HTTP_PORT must differ")
	}
	if c.GRPC.HealthInterval <= 0 {
		return fmt.Errorf("TODO_HEALTH_INTERVAL must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("TODO_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// LoadServerConfig loads .env (if present) and then the environment.
func LoadServerConfig() (*ServerConfig, error) {
	if err := env.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}

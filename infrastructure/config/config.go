package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Persistence backends
const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config holds all application configuration. Values are layered:
// defaults, then the YAML file named by CONFIG_FILE, then environment variables.
type Config struct {
	Environment string `yaml:"environment" envconfig:"ENVIRONMENT"`

	Server        ServerConfig        `yaml:"server"`
	AWS           AWSConfig           `yaml:"aws"`
	Persistence   PersistenceConfig   `yaml:"persistence"`
	Events        EventsConfig        `yaml:"events"`
	Authorization AuthorizationConfig `yaml:"authorization"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
	Breaker       BreakerConfig       `yaml:"breaker"`

	// path of the YAML file the config was read from, if any
	File string `yaml:"-" ignored:"true"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" envconfig:"SERVER_ADDRESS"`
	EnableCORS      bool          `yaml:"enableCors" envconfig:"ENABLE_CORS"`
	AllowedOrigins  []string      `yaml:"allowedOrigins" envconfig:"ALLOWED_ORIGINS"`
	ReadTimeout     time.Duration `yaml:"readTimeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
	// RequestsPerMinute caps requests per client address and per user; 0 disables limiting
	RequestsPerMinute int `yaml:"requestsPerMinute" envconfig:"RATE_LIMIT_PER_MINUTE"`
}

type AWSConfig struct {
	Region string `yaml:"region" envconfig:"AWS_REGION"`
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local
	Endpoint string `yaml:"endpoint" envconfig:"AWS_ENDPOINT_URL"`
}

type PersistenceConfig struct {
	Backend   string `yaml:"backend" envconfig:"PERSISTENCE_BACKEND"`
	TableName string `yaml:"tableName" envconfig:"TABLE_NAME"`
	GSI1Name  string `yaml:"gsi1Name" envconfig:"GSI1_INDEX_NAME"`
	GSI2Name  string `yaml:"gsi2Name" envconfig:"GSI2_INDEX_NAME"`
}

type EventsConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"EVENTS_ENABLED"`
	EventBusName string `yaml:"eventBusName" envconfig:"EVENT_BUS_NAME"`
}

type AuthorizationConfig struct {
	CacheTTL      time.Duration `yaml:"cacheTtl" envconfig:"CAPABILITY_CACHE_TTL"`
	SweepInterval time.Duration `yaml:"sweepInterval" envconfig:"CAPABILITY_SWEEP_INTERVAL"`
	// AllowUnverifiedTokens lets local builds read bearer token claims without
	// a gateway authorizer in front. Never enabled in production.
	AllowUnverifiedTokens bool `yaml:"allowUnverifiedTokens" envconfig:"ALLOW_UNVERIFIED_TOKENS"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

type ObservabilityConfig struct {
	EnableMetrics    bool    `yaml:"enableMetrics" envconfig:"ENABLE_METRICS"`
	MetricsNamespace string  `yaml:"metricsNamespace" envconfig:"METRICS_NAMESPACE"`
	EnableTracing    bool    `yaml:"enableTracing" envconfig:"ENABLE_TRACING"`
	OTLPEndpoint     string  `yaml:"otlpEndpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceSampleRate  float64 `yaml:"traceSampleRate" envconfig:"TRACE_SAMPLE_RATE"`
	ServiceName      string  `yaml:"serviceName" envconfig:"SERVICE_NAME"`
}

type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"maxRequests" envconfig:"BREAKER_MAX_REQUESTS"`
	Interval     time.Duration `yaml:"interval" envconfig:"BREAKER_INTERVAL"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"BREAKER_TIMEOUT"`
	FailureRatio float64       `yaml:"failureRatio" envconfig:"BREAKER_FAILURE_RATIO"`
	MinRequests  uint32        `yaml:"minRequests" envconfig:"BREAKER_MIN_REQUESTS"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Address:           ":8080",
			EnableCORS:        true,
			AllowedOrigins:    []string{"*"},
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RequestsPerMinute: 300,
		},
		AWS: AWSConfig{Region: "us-west-2"},
		Persistence: PersistenceConfig{
			Backend:   BackendDynamoDB,
			TableName: "clubhub",
			GSI1Name:  "GSI1",
			GSI2Name:  "GSI2",
		},
		Events: EventsConfig{
			Enabled:      true,
			EventBusName: "clubhub-events",
		},
		Authorization: AuthorizationConfig{
			CacheTTL:      5 * time.Minute,
			SweepInterval: time.Minute,
		},
		Logging: LoggingConfig{Level: "info"},
		Observability: ObservabilityConfig{
			EnableMetrics:    true,
			MetricsNamespace: "clubhub",
			TraceSampleRate:  0.1,
			ServiceName:      "clubhub-backend",
		},
		Breaker: BreakerConfig{
			MaxRequests:  5,
			Interval:     30 * time.Second,
			Timeout:      60 * time.Second,
			FailureRatio: 0.8,
			MinRequests:  5,
		},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE and the environment.
func LoadConfig() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// LoadFrom is LoadConfig with an explicit YAML path. An empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
		cfg.File = path
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.Persistence.Backend = strings.ToLower(strings.TrimSpace(c.Persistence.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.Persistence.Backend {
	case BackendDynamoDB:
		if c.Persistence.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.Persistence.GSI1Name == "" || c.Persistence.GSI2Name == "" {
			return fmt.Errorf("GSI1_INDEX_NAME and GSI2_INDEX_NAME are required")
		}
	case BackendMemory:
		if c.IsProduction() {
			return fmt.Errorf("the memory backend cannot be used in production")
		}
	default:
		return fmt.Errorf("unknown persistence backend %q", c.Persistence.Backend)
	}

	if c.Events.Enabled && c.Persistence.Backend == BackendDynamoDB && c.Events.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}
	if c.IsProduction() && c.Authorization.AllowUnverifiedTokens {
		return fmt.Errorf("ALLOW_UNVERIFIED_TOKENS cannot be enabled in production")
	}
	if c.Authorization.CacheTTL <= 0 {
		return fmt.Errorf("CAPABILITY_CACHE_TTL must be positive")
	}
	if c.Server.RequestsPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative")
	}
	if c.Observability.TraceSampleRate < 0 || c.Observability.TraceSampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be between 0 and 1")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

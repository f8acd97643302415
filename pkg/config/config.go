package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Sentry     SentryConfig
	Providers  ProvidersConfig
	Resilience ResilienceConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int
	MinConns      int
	MigrationsDir string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// SentryConfig holds error tracking configuration
type SentryConfig struct {
	DSN     string
	Enabled bool
}

// ProvidersConfig groups the external data providers the analyzer calls
type ProvidersConfig struct {
	Route        RouteProviderConfig
	Elevation    ElevationProviderConfig
	Weather      WeatherProviderConfig
	CrossingsCSV string // seed file for the crossing reference table
}

// RouteProviderConfig holds the pedestrian routing upstream
type RouteProviderConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// ElevationProviderConfig holds the elevation lookup upstream
type ElevationProviderConfig struct {
	BaseURL        string
	TimeoutSeconds int
	BatchSize      int
}

// WeatherProviderConfig holds the weather observation upstream
type WeatherProviderConfig struct {
	BaseURL         string
	APIKey          string
	TimeoutSeconds  int
	CacheTTLMinutes int
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-provider breaker tuning
type CircuitBreakerConfig struct {
	Enabled           bool
	FailureThreshold  int
	SuccessThreshold  int
	TimeoutSeconds    int
	IntervalSeconds   int
	ProviderOverrides map[string]CircuitBreakerSettings
}

// CircuitBreakerSettings overrides defaults for a specific upstream provider
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failure_threshold"`
	SuccessThreshold int `json:"success_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	IntervalSeconds  int `json:"interval_seconds"`
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "walketa"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			MaxConns:      getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:      getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Sentry: SentryConfig{
			DSN:     getEnv("SENTRY_DSN", ""),
			Enabled: getEnvAsBool("SENTRY_ENABLED", false),
		},
		Providers: ProvidersConfig{
			Route: RouteProviderConfig{
				BaseURL:        getEnv("ROUTE_API_BASE_URL", "https://apis.openapi.sk.com/transit"),
				APIKey:         getEnv("ROUTE_API_KEY", ""),
				TimeoutSeconds: getEnvAsInt("ROUTE_API_TIMEOUT_SECONDS", 10),
			},
			Elevation: ElevationProviderConfig{
				BaseURL:        getEnv("ELEVATION_API_BASE_URL", "https://api.open-elevation.com/api/v1/lookup"),
				TimeoutSeconds: getEnvAsInt("ELEVATION_API_TIMEOUT_SECONDS", 15),
				BatchSize:      getEnvAsInt("ELEVATION_API_BATCH_SIZE", 250),
			},
			Weather: WeatherProviderConfig{
				BaseURL:         getEnv("WEATHER_API_BASE_URL", "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"),
				APIKey:          getEnv("WEATHER_API_KEY", ""),
				TimeoutSeconds:  getEnvAsInt("WEATHER_API_TIMEOUT_SECONDS", 10),
				CacheTTLMinutes: getEnvAsInt("WEATHER_CACHE_TTL_MINUTES", 10),
			},
			CrossingsCSV: getEnv("CROSSINGS_CSV_PATH", ""),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", true),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
	}

	if overrides := getEnv("CB_PROVIDER_OVERRIDES", ""); overrides != "" {
		var providerConfig map[string]CircuitBreakerSettings
		if err := json.Unmarshal([]byte(overrides), &providerConfig); err != nil {
			return nil, fmt.Errorf("invalid CB_PROVIDER_OVERRIDES value: %w", err)
		}
		cfg.Resilience.CircuitBreaker.ProviderOverrides = providerConfig
	}

	if cfg.Providers.Elevation.BatchSize <= 0 || cfg.Providers.Elevation.BatchSize > 250 {
		cfg.Providers.Elevation.BatchSize = 250
	}

	if cfg.Resilience.CircuitBreaker.TimeoutSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.TimeoutSeconds = 30
	}
	if cfg.Resilience.CircuitBreaker.IntervalSeconds <= 0 {
		cfg.Resilience.CircuitBreaker.IntervalSeconds = 60
	}
	if cfg.Resilience.CircuitBreaker.FailureThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.FailureThreshold = 5
	}
	if cfg.Resilience.CircuitBreaker.SuccessThreshold <= 0 {
		cfg.Resilience.CircuitBreaker.SuccessThreshold = 1
	}

	return cfg, nil
}

// SettingsFor returns effective breaker settings for a specific upstream provider
func (c CircuitBreakerConfig) SettingsFor(provider string) CircuitBreakerSettings {
	settings := CircuitBreakerSettings{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		TimeoutSeconds:   c.TimeoutSeconds,
		IntervalSeconds:  c.IntervalSeconds,
	}

	if override, ok := c.ProviderOverrides[provider]; ok {
		if override.FailureThreshold > 0 {
			settings.FailureThreshold = override.FailureThreshold
		}
		if override.SuccessThreshold > 0 {
			settings.SuccessThreshold = override.SuccessThreshold
		}
		if override.TimeoutSeconds > 0 {
			settings.TimeoutSeconds = override.TimeoutSeconds
		}
		if override.IntervalSeconds > 0 {
			settings.IntervalSeconds = override.IntervalSeconds
		}
	}

	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = 1
	}
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = 30
	}
	if settings.IntervalSeconds <= 0 {
		settings.IntervalSeconds = 60
	}

	return settings
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MigrateURL returns the database URL form used by the migration runner
func (c *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// CacheTTL returns the weather cache duration
func (c WeatherProviderConfig) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Timeout helpers keep provider clients from hand-converting seconds.

func (c RouteProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ElevationProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c WeatherProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
)

// Config holds all configuration for the solver service.
type Config struct {
	// Environment
	Env string

	// Server
	APIHost            string
	APIPort            string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxRequestBodyKB   int64
	ShutdownGracePeriod time.Duration

	// Default solve parameters, used when a request omits them
	DefaultCostWeight          float64
	DefaultBalanceWeight       float64
	DefaultMaxMatchesPerPerson int
	DefaultForceExisting       bool
	DefaultMaxTimeSeconds      int
	DefaultSolverType          string

	// Logging
	LogLevel  string
	LogFormat string

	// Security
	CORSAllowedOrigins         []string
	RateLimitRequestsPerMinute int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		APIHost:             getEnv("API_HOST", "0.0.0.0"),
		APIPort:             getEnv("API_PORT", "8080"),
		ReadTimeout:         getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:        getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:         getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		MaxRequestBodyKB:    int64(getEnvAsInt("MAX_REQUEST_BODY_KB", 4096)),
		ShutdownGracePeriod: getEnvAsDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DefaultCostWeight:          getEnvAsFloat("DEFAULT_COST_WEIGHT", 0.7),
		DefaultBalanceWeight:       getEnvAsFloat("DEFAULT_BALANCE_WEIGHT", 0.3),
		DefaultMaxMatchesPerPerson: getEnvAsInt("DEFAULT_MAX_MATCHES_PER_PERSON", 3),
		DefaultForceExisting:       getEnvAsBool("DEFAULT_FORCE_EXISTING", true),
		DefaultMaxTimeSeconds:      getEnvAsInt("DEFAULT_MAX_TIME_SECONDS", 10),
		DefaultSolverType:          getEnv("DEFAULT_SOLVER_TYPE", string(domain.SolverCPSAT)),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CORSAllowedOrigins:         getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
	}

	return cfg, cfg.validate()
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.DefaultSolverType != string(domain.SolverCPSAT) && c.DefaultSolverType != string(domain.SolverGreedy) {
		return fmt.Errorf("DEFAULT_SOLVER_TYPE must be %q or %q, got %q", domain.SolverCPSAT, domain.SolverGreedy, c.DefaultSolverType)
	}
	if c.DefaultMaxMatchesPerPerson <= 0 {
		return fmt.Errorf("DEFAULT_MAX_MATCHES_PER_PERSON must be positive")
	}
	if c.DefaultMaxTimeSeconds <= 0 {
		return fmt.Errorf("DEFAULT_MAX_TIME_SECONDS must be positive")
	}
	return nil
}

// DefaultParameters builds the domain.SolverParameters a request uses
// when it omits the parameters object entirely.
func (c *Config) DefaultParameters() domain.SolverParameters {
	return domain.SolverParameters{
		CostWeight:          c.DefaultCostWeight,
		BalanceWeight:       c.DefaultBalanceWeight,
		MaxMatchesPerPerson: c.DefaultMaxMatchesPerPerson,
		ForceExisting:       c.DefaultForceExisting,
		MaxTimeSeconds:      c.DefaultMaxTimeSeconds,
		SolverType:          domain.SolverType(c.DefaultSolverType),
	}
}

// IsProduction returns true if the environment is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// Package config provides configuration management for the taskdesk
// application. Values come from environment variables, with support for
// required variables, defaults, and collective error reporting: every
// problem found during loading is reported at once instead of failing on
// the first one.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PoolConfig represents configuration for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// BcryptCost is the cost parameter for password hashing. Higher is
	// slower and stronger; bcrypt.DefaultCost is a sane production value
	// and tests may lower it.
	BcryptCost int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration structure.
type AppConfig struct {
	DB     *PoolConfig
	Auth   *AuthConfig
	Server *ServerConfig
}

// getRequiredEnv reads a required environment variable, collecting an
// error if it is unset.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an optional environment variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an optional integer environment variable,
// collecting an error and using the default when parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// clampPoolSize keeps the pool size within reasonable bounds.
func clampPoolSize(size int, varName string, errs *[]string) int {
	if size < 1 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is less than minimum 1, clamping to 1", varName, size))
		return 1
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig builds an AppConfig from environment variables. All errors
// encountered are aggregated into a single error.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs), "DB_POOL_SIZE", &errs)

	dbConfig := &PoolConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	bcryptCost := getOptionalEnvInt("BCRYPT_COST", bcrypt.DefaultCost, &errs)
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Sprintf("invalid value for BCRYPT_COST: must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, bcryptCost))
		bcryptCost = bcrypt.DefaultCost
	}
	authConfig := &AuthConfig{BcryptCost: bcryptCost}

	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:     dbConfig,
		Auth:   authConfig,
		Server: serverConfig,
	}, nil
}

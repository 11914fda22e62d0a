package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// unsetEnv makes variables truly absent for the test. t.Setenv first, so
// the original values are restored on cleanup.
func unsetEnv(t *testing.T, keys ...string) {
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

// setRequiredEnv sets the variables without which LoadConfig always fails
// and clears the optional ones so defaults are observable.
func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_USER", "taskdesk")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "taskdesk")
	unsetEnv(t, "DB_HOST", "DB_PORT", "DB_POOL_SIZE", "BCRYPT_COST", "PORT")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "taskdesk", cfg.DB.User)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.MaxSize)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Auth.BcryptCost)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_POOL_SIZE", "25")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5433, cfg.DB.Port)
	assert.Equal(t, 25, cfg.DB.MaxSize)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfigCollectsAllErrors(t *testing.T) {
	// Every missing required variable must be reported together, not just
	// the first.
	unsetEnv(t, "DB_USER", "DB_PASSWORD", "DB_NAME")
	t.Setenv("DB_PORT", "not-a-number")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "DB_NAME")
	assert.Contains(t, err.Error(), "DB_PORT")
}

func TestLoadConfigInvalidBcryptCost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BCRYPT_COST", "99")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestLoadConfigClampsPoolSize(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_POOL_SIZE", "0")

	// Clamping is reported as a configuration error rather than silently
	// accepted.
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_POOL_SIZE")
}

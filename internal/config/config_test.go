package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"ENV_FILE", "PORT", "DB_TYPE", "DB_DATABASE", "DB_USER", "DB_CONNECTION_LIMIT",
		"AUTHZ_URL", "AUTHZ_CLIENT_ID", "AUTHZ_DISABLED", "REDIS_ADDR", "RECOMMEND_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresDatabase(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.EqualError(t, err, "DB_DATABASE is required")
}

func TestLoadRequiresAuthorizer(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DATABASE", "carmart")
	t.Setenv("DB_USER", "carmart")

	_, err := Load()
	assert.EqualError(t, err, "AUTHZ_URL is required")

	t.Setenv("AUTHZ_URL", "http://authz:8080")
	_, err = Load()
	assert.EqualError(t, err, "AUTHZ_CLIENT_ID is required")
}

func TestLoadSQLiteWithoutAuthorizer(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TYPE", "SQLite")
	t.Setenv("DB_DATABASE", ":memory:")
	t.Setenv("AUTHZ_DISABLED", "true")
	t.Setenv("RECOMMEND_LIMIT", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsSQLite())
	assert.True(t, cfg.AuthzDisabled)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 8, cfg.RecommendLimit)
	assert.Equal(t, 0, cfg.RecommendThreshold)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_TYPE=sqlite3\nDB_DATABASE=cars.db\nAUTHZ_DISABLED=1\nREDIS_ADDR=redis:6379\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv never overrides variables that are already set, so the
	// cleared keys must be unset for the file to apply
	for _, key := range []string{"DB_TYPE", "DB_DATABASE", "AUTHZ_DISABLED", "REDIS_ADDR"} {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		for _, key := range []string{"DB_TYPE", "DB_DATABASE", "AUTHZ_DISABLED", "REDIS_ADDR"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cars.db", cfg.DBDatabase)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.True(t, cfg.AuthzDisabled)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "nope.env"))

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("CARMART_FLAG", "not-a-bool")
	assert.True(t, getEnvAsBool("CARMART_FLAG", true))
	t.Setenv("CARMART_FLAG", "false")
	assert.False(t, getEnvAsBool("CARMART_FLAG", true))
}

package services_test

import (
	"testing"

	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/database"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/testdb"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHealthCheckSQLiteOnly(t *testing.T) {
	db := testdb.New(t)
	cfg := &config.Config{DBType: "sqlite3", DBDatabase: ":memory:", AuthzDisabled: true}

	result := services.HealthCheck(ctx, cfg, db, nil, zap.NewNop())

	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "ok", result.Database)
	assert.Equal(t, "disabled", result.Authorizer)
	assert.Equal(t, "disabled", result.Redis)
	assert.Empty(t, result.ErrorMessage)
}

func TestHealthCheckFailures(t *testing.T) {
	db := testdb.New(t)
	cfg := &config.Config{DBType: "sqlite3", AuthzURL: "http://127.0.0.1:1"}
	database.Close(db)

	result := services.HealthCheck(ctx, cfg, db, nil, zap.NewNop())

	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "unreachable", result.Database)
	assert.Equal(t, "unreachable", result.Authorizer)
	assert.Contains(t, result.ErrorMessage, "authorizer:")
	assert.Contains(t, result.ErrorMessage, "database:")
}

func TestPrincipalHasRole(t *testing.T) {
	p := &services.Principal{UserID: "u", Roles: []string{"user", "seller"}}
	assert.True(t, p.HasRole("admin", "seller"))
	assert.False(t, p.HasRole("admin"))
}

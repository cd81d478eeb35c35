package database

import (
	"path/filepath"
	"testing"

	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestDialectorNames(t *testing.T) {
	tests := []struct {
		dbType string
		name   string
	}{
		{"mysql", "mysql"},
		{"mariadb", "mysql"},
		{"postgres", "postgres"},
		{"sqlite", "sqlite"},
		{"sqlite3", "sqlite"},
		{"mssql", "sqlserver"},
	}

	for _, tt := range tests {
		d, err := Dialector(&config.Config{DBType: tt.dbType, DBDatabase: "carmart"})
		require.NoError(t, err, tt.dbType)
		assert.Equal(t, tt.name, d.Name(), tt.dbType)
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.EqualError(t, err, "unsupported database type: oracle")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, LogLevel("off"))
	assert.Equal(t, logger.Info, LogLevel("DEBUG"))
	assert.Equal(t, logger.Warn, LogLevel(""))
}

func TestConnectPureSQLite(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "carmart.db"),
		DBConnectionLimit: 10,
		DBLogLevel:        "silent",
	}

	db, err := Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	brand := models.Brand{Name: "Toyota", BrandType: "imported"}
	require.NoError(t, db.Create(&brand).Error)

	var count int64
	require.NoError(t, db.Model(&models.Brand{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.True(t, db.Migrator().HasIndex(&models.RecommendationRecord{}, "idx_user_car"))
}

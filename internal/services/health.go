package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/carmart/internal/cache"
	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const healthTimeout = 3 * time.Second

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Redis        string            `json:"redis"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck pings the database, the Authorizer and Redis concurrently.
// Dependencies that are not configured report "disabled".
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, c *cache.Cache, log *zap.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:     "healthy",
		Authorizer: "disabled",
		Redis:      "disabled",
		Details:    make(map[string]string),
	}

	var (
		mu       sync.Mutex
		failures []string
	)
	fail := func(component, state, key string, err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Details[key] = err.Error()
		failures = append(failures, fmt.Sprintf("%s: %v", component, err))
		switch component {
		case "database":
			result.Database = state
		case "authorizer":
			result.Authorizer = state
		case "redis":
			result.Redis = state
		}
		log.Warn("health check failed", zap.String("component", component), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	// each probe records its own failure, so the group never short-circuits
	var g errgroup.Group

	g.Go(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			fail("database", "error", "database_error", err)
			return nil
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			fail("database", "unreachable", "database_ping_error", err)
			return nil
		}
		mu.Lock()
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
		mu.Unlock()
		return nil
	})

	if !cfg.AuthzDisabled {
		g.Go(func() error {
			if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
				fail("authorizer", "unreachable", "authorizer_error", err)
				return nil
			}
			mu.Lock()
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
			mu.Unlock()
			return nil
		})
	}

	if c.Enabled() {
		g.Go(func() error {
			if err := c.Ping(ctx); err != nil {
				fail("redis", "unreachable", "redis_error", err)
				return nil
			}
			mu.Lock()
			result.Redis = "ok"
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	if len(failures) > 0 {
		sort.Strings(failures)
		result.Status = "unhealthy"
		result.ErrorMessage = strings.Join(failures, "; ")
	} else {
		log.Debug("health check passed")
	}

	return result
}

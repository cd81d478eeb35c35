// e2e_test.go
//
// A used-car catalog, preference and recommendation data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carmart.
// carmart is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carmart is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carmart.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package e2e_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/localnerve/carmart/internal/cache"
	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/database"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/tests/helpers"
	"go.uber.org/zap"
)

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	carmartHost, _ := tc.CarMartContainer.Host(ctx)
	carmartPort, _ := tc.CarMartContainer.MappedPort(ctx, "3000")
	baseURL := fmt.Sprintf("http://%s:%s", carmartHost, carmartPort.Port())

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, tc)
	})

	t.Run("HealthRoute", func(t *testing.T) {
		resp := helpers.Get(t, baseURL+"/health", nil)
		helpers.AssertStatus(t, resp, http.StatusOK)
		var result services.HealthCheckResult
		helpers.ParseJSON(t, resp, &result)
		if result.Redis != "ok" {
			t.Errorf("Expected redis healthy, got %+v", result)
		}
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	t.Run("PublicCatalog", func(t *testing.T) {
		testPublicCatalog(t, baseURL)
	})

	t.Run("RecommendationsRequireSession", func(t *testing.T) {
		resp := helpers.Get(t, baseURL+"/api/recommendations", nil)
		helpers.AssertStatus(t, resp, http.StatusForbidden)
		resp.Body.Close()

		resp = helpers.Get(t, baseURL+"/api/recommendations", &helpers.Identity{Cookie: "not-a-session"})
		helpers.AssertStatus(t, resp, http.StatusForbidden)
		resp.Body.Close()
	})

	t.Run("SellerRoutesRequireRole", func(t *testing.T) {
		resp := helpers.DoJSON(t, http.MethodPost, baseURL+"/api/catalog/listings", map[string]any{"model": "Corolla"}, nil)
		helpers.AssertStatus(t, resp, http.StatusForbidden)
		resp.Body.Close()
	})
}

func testHealthCheck(t *testing.T, tc *helpers.TestContainers) {
	ctx := context.Background()

	// Point at the mapped ports on localhost, not internal container names
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	dbHost, _ := tc.DBContainer.Host(ctx)
	dbPort, _ := tc.DBContainer.MappedPort(ctx, "3306")
	cfg.DBHost = dbHost
	cfg.DBPort = dbPort.Port()
	cfg.DBDatabase = "carmart"

	authzHost, _ := tc.AuthorizerContainer.Host(ctx)
	authzPort, _ := tc.AuthorizerContainer.MappedPort(ctx, "8080")
	cfg.AuthzURL = fmt.Sprintf("http://%s:%s", authzHost, authzPort.Port())

	redisHost, _ := tc.RedisContainer.Host(ctx)
	redisPort, _ := tc.RedisContainer.MappedPort(ctx, "6379")

	gormDB, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(gormDB)

	refCache, err := cache.New(redisHost+":"+redisPort.Port(), "", 0, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test redis: %v", err)
	}
	defer refCache.Close()

	result := services.HealthCheck(ctx, cfg, gormDB, refCache, zap.NewNop())
	if result.Status != "healthy" {
		t.Errorf("Health check failed: %+v", result)
	}

	t.Logf("Health check passed: status=%s, database=%s, authorizer=%s, redis=%s",
		result.Status, result.Database, result.Authorizer, result.Redis)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, body)
	}
	if !bytes.Contains(body, []byte("http_requests_total")) {
		t.Errorf("Expected http_requests_total metric in body")
	}

	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(body))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

func testPublicCatalog(t *testing.T, baseURL string) {
	for _, path := range []string{"/api/catalog/brands", "/api/catalog/car-types", "/api/catalog/listings", "/api/catalog/listings/latest", "/api/catalog/statistics"} {
		resp := helpers.Get(t, baseURL+path, nil)
		helpers.AssertStatus(t, resp, http.StatusOK)

		var result any
		helpers.ParseJSON(t, resp, &result)
	}

	resp := helpers.Get(t, baseURL+"/api/catalog/listings?price_range=cheap", nil)
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = helpers.Get(t, baseURL+"/api/catalog/listings/999999", nil)
	helpers.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

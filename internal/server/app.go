// app.go
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

// Package server assembles the Fiber application: middleware, routes and the
// error handler
package server

import (
	"errors"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/carmart/internal/cache"
	"github.com/localnerve/carmart/internal/config"
	"github.com/localnerve/carmart/internal/handlers"
	"github.com/localnerve/carmart/internal/matching"
	"github.com/localnerve/carmart/internal/middleware"
	"github.com/localnerve/carmart/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes need
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.Cache
	Engine *matching.Engine
	Auth   *middleware.Auth
	Log    *zap.Logger

	// Metrics registers /metrics and the request collector; tests leave it off
	Metrics bool
}

// New builds the application with every route registered
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler(d.Log),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(compress.New())

	if d.Metrics {
		prometheus := fiberprometheus.New("carmart")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	health := &handlers.HealthHandler{Cfg: d.Config, DB: d.DB, Cache: d.Cache, Log: d.Log}
	app.Get("/health", health.Health)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	registerCatalog(api, d)
	registerPreferences(api, d)
	registerRecommendations(api, d)
	registerFavorites(api, d)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return app
}

func registerCatalog(api fiber.Router, d Deps) {
	h := &handlers.CatalogHandler{DB: d.DB, Cache: d.Cache, Log: d.Log}
	catalog := api.Group("/catalog")

	// Reference data (public GET, admin POST)
	catalog.Get("/brands", h.ListBrands)
	catalog.Post("/brands", d.Auth.Admin(), h.CreateBrand)
	catalog.Get("/car-types", h.ListCarTypes)
	catalog.Post("/car-types", d.Auth.Admin(), h.CreateCarType)

	// Public listing views
	catalog.Get("/listings", h.ListListings)
	catalog.Get("/listings/latest", h.LatestListings)
	catalog.Get("/listings/:id", d.Auth.Optional(), h.GetListing)
	catalog.Get("/statistics", h.Statistics)

	// Seller routes
	catalog.Post("/listings", d.Auth.Seller(), h.CreateListing)
	catalog.Put("/listings/:id", d.Auth.Seller(), h.UpdateListing)
	catalog.Post("/listings/:id/status", d.Auth.Seller(), h.ChangeStatus)
	catalog.Get("/my-listings", d.Auth.Seller(), h.MyListings)

	// Admin routes
	catalog.Get("/manage", d.Auth.Admin(), h.Manage)
}

func registerPreferences(api fiber.Router, d Deps) {
	h := &handlers.PreferenceHandler{DB: d.DB, Log: d.Log}
	prefs := api.Group("/preferences", handlers.StatusErrors(d.Log), d.Auth.User())

	prefs.Get("/", h.GetPreference)
	prefs.Post("/", h.SavePreference)
	prefs.Post("/searches", h.RecordSearch)
}

func registerRecommendations(api fiber.Router, d Deps) {
	h := &handlers.RecommendationHandler{DB: d.DB, Engine: d.Engine, Log: d.Log}
	recs := api.Group("/recommendations", handlers.StatusErrors(d.Log), d.Auth.User())

	recs.Get("/", h.Recommend)
	recs.Post("/", h.Recommend)
	recs.Post("/refresh", h.Refresh)
	recs.Get("/history", h.History)
	recs.Post("/:id/viewed", h.MarkViewed)
	recs.Post("/:id/clicked", h.MarkClicked)
	recs.Post("/:id/rating", h.Rate)
}

func registerFavorites(api fiber.Router, d Deps) {
	h := &handlers.FavoriteHandler{DB: d.DB, Log: d.Log}

	api.Post("/catalog/listings/:id/favorite", handlers.StatusErrors(d.Log), d.Auth.User(), h.ToggleFavorite)
	api.Get("/favorites", handlers.StatusErrors(d.Log), d.Auth.User(), h.ListFavorites)
}

// customErrorHandler handles errors that escape the handlers
func customErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := handlers.MsgInternal
		errorType := "unknown"

		var fe *fiber.Error
		var ce *types.CustomError
		switch {
		case errors.As(err, &ce):
			code = ce.Code
			message = ce.Message
			errorType = ce.Type
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		default:
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"status":    code,
			"message":   message,
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
			"type":      errorType,
		})
	}
}

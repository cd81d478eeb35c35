package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/cache"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/types"
	"github.com/localnerve/carmart/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogHandler handles brand, car type and listing routes
type CatalogHandler struct {
	DB    *gorm.DB
	Cache *cache.Cache
	Log   *zap.Logger
}

// StatusChange is the body of a listing status transition
type StatusChange struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ListBrands handles GET /api/catalog/brands
// @Summary List brands
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Brand
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /catalog/brands [get]
func (h *CatalogHandler) ListBrands(c *fiber.Ctx) error {
	brands, err := services.ListBrands(c.UserContext(), h.DB, h.Cache)
	if err != nil {
		return fail(c, h.Log, "listBrands", err)
	}
	return utils.SuccessResponse(c, brands, fiber.StatusOK)
}

// CreateBrand handles POST /api/catalog/brands
// @Summary Create a brand
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body services.BrandInput true "Brand"
// @Success 201 {object} models.Brand
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /catalog/brands [post]
func (h *CatalogHandler) CreateBrand(c *fiber.Ctx) error {
	var in services.BrandInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest, "createBrand")
	}

	brand, err := services.CreateBrand(c.UserContext(), h.DB, h.Cache, in)
	if err != nil {
		return fail(c, h.Log, "createBrand", err)
	}
	return utils.SuccessResponse(c, brand, fiber.StatusCreated)
}

// ListCarTypes handles GET /api/catalog/car-types
// @Summary List car types
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.CarType
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /catalog/car-types [get]
func (h *CatalogHandler) ListCarTypes(c *fiber.Ctx) error {
	carTypes, err := services.ListCarTypes(c.UserContext(), h.DB, h.Cache)
	if err != nil {
		return fail(c, h.Log, "listCarTypes", err)
	}
	return utils.SuccessResponse(c, carTypes, fiber.StatusOK)
}

// CreateCarType handles POST /api/catalog/car-types
// @Summary Create a car type
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body services.CarTypeInput true "Car type"
// @Success 201 {object} models.CarType
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /catalog/car-types [post]
func (h *CatalogHandler) CreateCarType(c *fiber.Ctx) error {
	var in services.CarTypeInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest, "createCarType")
	}

	carType, err := services.CreateCarType(c.UserContext(), h.DB, h.Cache, in)
	if err != nil {
		return fail(c, h.Log, "createCarType", err)
	}
	return utils.SuccessResponse(c, carType, fiber.StatusCreated)
}

// ListListings handles GET /api/catalog/listings
// @Summary List approved listings
// @Description Approved listings, newest first, filtered by brand, type and price band
// @Tags Catalog
// @Produce json
// @Param brand query int false "Brand id"
// @Param type query int false "Car type id"
// @Param price_range query string false "Budget band" Enums(0-5, 5-10, 10-20, 20-50, 50+)
// @Param page query int false "Page, from 1"
// @Param page_size query int false "Page size"
// @Success 200 {object} services.ListingPage
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /catalog/listings [get]
func (h *CatalogHandler) ListListings(c *fiber.Ctx) error {
	filter := services.ListingFilter{
		BrandID:    queryUint(c, "brand"),
		TypeID:     queryUint(c, "type"),
		PriceRange: c.Query("price_range"),
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", services.DefaultPageSize),
	}

	page, err := services.ListListings(c.UserContext(), h.DB, filter)
	if err != nil {
		return fail(c, h.Log, "listListings", err)
	}
	return utils.SuccessResponse(c, page, fiber.StatusOK)
}

// LatestListings handles GET /api/catalog/listings/latest
// @Summary Newest approved listings
// @Tags Catalog
// @Produce json
// @Param limit query int false "How many"
// @Success 200 {array} models.Listing
// @Router /catalog/listings/latest [get]
func (h *CatalogHandler) LatestListings(c *fiber.Ctx) error {
	listings, err := services.LatestListings(c.UserContext(), h.DB, c.QueryInt("limit", services.DefaultLatestLimit))
	if err != nil {
		return fail(c, h.Log, "latestListings", err)
	}
	return utils.SuccessResponse(c, listings, fiber.StatusOK)
}

// GetListing handles GET /api/catalog/listings/:id
// @Summary Get a listing
// @Description Listings that are not approved are visible to their seller and admins only
// @Tags Catalog
// @Produce json
// @Param id path int true "Listing id"
// @Success 200 {object} models.Listing
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /catalog/listings/{id} [get]
func (h *CatalogHandler) GetListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	listing, err := services.GetListing(c.UserContext(), h.DB, actorFrom(c), id)
	if err != nil {
		return fail(c, h.Log, "getListing", err)
	}
	return utils.SuccessResponse(c, listing, fiber.StatusOK)
}

// Statistics handles GET /api/catalog/statistics
// @Summary Catalog statistics
// @Tags Catalog
// @Produce json
// @Success 200 {object} services.CatalogStats
// @Router /catalog/statistics [get]
func (h *CatalogHandler) Statistics(c *fiber.Ctx) error {
	stats, err := services.Statistics(c.UserContext(), h.DB)
	if err != nil {
		return fail(c, h.Log, "statistics", err)
	}
	return utils.SuccessResponse(c, stats, fiber.StatusOK)
}

// CreateListing handles POST /api/catalog/listings
// @Summary Create a listing
// @Description New listings start pending approval
// @Tags Seller
// @Accept json
// @Produce json
// @Param body body services.ListingInput true "Listing"
// @Success 201 {object} models.Listing
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /catalog/listings [post]
func (h *CatalogHandler) CreateListing(c *fiber.Ctx) error {
	var in services.ListingInput
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest, "createListing")
	}

	listing, err := services.CreateListing(c.UserContext(), h.DB, userID(c), in)
	if err != nil {
		return fail(c, h.Log, "createListing", err)
	}
	return utils.SuccessResponse(c, listing, fiber.StatusCreated)
}

// UpdateListing handles PUT /api/catalog/listings/:id
// @Summary Edit a listing
// @Description Owner only. Brand and car type cannot change.
// @Tags Seller
// @Accept json
// @Produce json
// @Param id path int true "Listing id"
// @Param body body services.ListingUpdate true "Fields to change"
// @Success 200 {object} models.Listing
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /catalog/listings/{id} [put]
func (h *CatalogHandler) UpdateListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var in services.ListingUpdate
	if err := c.BodyParser(&in); err != nil {
		return utils.ErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest, "updateListing")
	}

	listing, err := services.UpdateListing(c.UserContext(), h.DB, userID(c), id, in)
	if err != nil {
		return fail(c, h.Log, "updateListing", err)
	}
	return utils.SuccessResponse(c, listing, fiber.StatusOK)
}

// ChangeStatus handles POST /api/catalog/listings/:id/status
// @Summary Move a listing through the approval workflow
// @Tags Seller
// @Accept json
// @Produce json
// @Param id path int true "Listing id"
// @Param body body StatusChange true "Target status"
// @Success 200 {object} models.Listing
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /catalog/listings/{id}/status [post]
func (h *CatalogHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var body StatusChange
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest, "changeStatus")
	}
	to, err := types.ParseListingStatus(body.Status)
	if err != nil {
		return fail(c, h.Log, "changeStatus", err)
	}

	listing, err := services.TransitionListing(c.UserContext(), h.DB, actorFrom(c), id, to, body.Reason)
	if err != nil {
		return fail(c, h.Log, "changeStatus", err)
	}

	h.Log.Info("listing status changed",
		zap.Uint64("listing_id", id),
		zap.String("status", string(to)),
		zap.String("by", userID(c)),
	)
	return utils.SuccessResponse(c, listing, fiber.StatusOK)
}

// MyListings handles GET /api/catalog/my-listings
// @Summary The seller's own listings, any status
// @Tags Seller
// @Produce json
// @Success 200 {array} models.Listing
// @Security CookieAuth
// @Router /catalog/my-listings [get]
func (h *CatalogHandler) MyListings(c *fiber.Ctx) error {
	listings, err := services.ListSellerListings(c.UserContext(), h.DB, userID(c))
	if err != nil {
		return fail(c, h.Log, "myListings", err)
	}
	return utils.SuccessResponse(c, listings, fiber.StatusOK)
}

// Manage handles GET /api/catalog/manage
// @Summary Admin listing management view
// @Tags Admin
// @Produce json
// @Param status query string false "Listing status" Enums(pending, approved, rejected, sold, maintenance)
// @Success 200 {array} models.Listing
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /catalog/manage [get]
func (h *CatalogHandler) Manage(c *fiber.Ctx) error {
	listings, err := services.ListAllListings(c.UserContext(), h.DB, c.Query("status"))
	if err != nil {
		return fail(c, h.Log, "manage", err)
	}
	return utils.SuccessResponse(c, listings, fiber.StatusOK)
}

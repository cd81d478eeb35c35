package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FavoriteHandler handles a buyer's saved listings
type FavoriteHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// ToggleFavorite handles POST /api/catalog/listings/:id/favorite
// @Summary Save or unsave a listing
// @Description Adds the listing to my favorites, or removes it when already saved
// @Tags Favorites
// @Produce json
// @Param id path int true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /catalog/listings/{id}/favorite [post]
func (h *FavoriteHandler) ToggleFavorite(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	action, err := services.ToggleFavorite(c.UserContext(), h.DB, userID(c), id)
	if err != nil {
		return failStatus(c, h.Log, "toggleFavorite", err)
	}
	return utils.StatusSuccessResponse(c, fiber.Map{
		"action":     action,
		"listing_id": id,
	})
}

// ListFavorites handles GET /api/favorites
// @Summary My favorite listings, newest first
// @Tags Favorites
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security CookieAuth
// @Router /favorites [get]
func (h *FavoriteHandler) ListFavorites(c *fiber.Ctx) error {
	favorites, err := services.ListFavorites(c.UserContext(), h.DB, userID(c))
	if err != nil {
		return failStatus(c, h.Log, "listFavorites", err)
	}
	return utils.StatusSuccessResponse(c, fiber.Map{
		"favorites":   favorites,
		"total_count": len(favorites),
	})
}

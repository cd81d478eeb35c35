package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/models"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/types"
	"github.com/localnerve/carmart/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PreferenceHandler handles the buyer's stated preferences
type PreferenceHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

// GetPreference handles GET /api/preferences
// @Summary Get my preferences
// @Tags Preferences
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /preferences [get]
func (h *PreferenceHandler) GetPreference(c *fiber.Ctx) error {
	pref, err := services.GetPreference(c.UserContext(), h.DB, userID(c))
	if err != nil {
		return failStatus(c, h.Log, "getPreference", err)
	}
	return utils.StatusSuccessResponse(c, fiber.Map{"preference": pref})
}

// SavePreference handles POST /api/preferences
// @Summary Save my preferences
// @Description Brand and type ids replace the stored sets; unknown ids are skipped.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param body body services.PreferenceInput true "Preferences"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /preferences [post]
func (h *PreferenceHandler) SavePreference(c *fiber.Ctx) error {
	var in services.PreferenceInput
	if err := c.BodyParser(&in); err != nil {
		h.Log.Debug("invalid preference body", zap.String("user_id", userID(c)), zap.Error(err))
		return utils.StatusErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest)
	}

	user := userID(c)
	pref, err := services.UpsertPreference(c.UserContext(), h.DB, user, in)
	if err != nil {
		return failStatus(c, h.Log, "savePreference", err)
	}

	ignoredBrands := services.IgnoredIDs(types.IDs(in.Brands), pref.BrandIDs())
	ignoredTypes := services.IgnoredIDs(types.IDs(in.Types), pref.TypeIDs())
	if len(ignoredBrands) > 0 || len(ignoredTypes) > 0 {
		h.Log.Debug("preference references ignored",
			zap.String("user_id", user),
			zap.Uint64s("brands", ignoredBrands),
			zap.Uint64s("types", ignoredTypes),
		)
	}

	return utils.StatusSuccessResponse(c, fiber.Map{
		"message":    "Preferences saved",
		"preference": pref,
	})
}

// RecordSearch handles POST /api/preferences/searches
// @Summary Record a catalog search in my history
// @Tags Preferences
// @Accept json
// @Produce json
// @Param body body models.SearchEntry true "Search"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /preferences/searches [post]
func (h *PreferenceHandler) RecordSearch(c *fiber.Ctx) error {
	var entry models.SearchEntry
	if err := c.BodyParser(&entry); err != nil {
		h.Log.Debug("invalid search body", zap.String("user_id", userID(c)), zap.Error(err))
		return utils.StatusErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest)
	}

	if err := services.RecordSearch(c.UserContext(), h.DB, userID(c), entry); err != nil {
		return failStatus(c, h.Log, "recordSearch", err)
	}
	return utils.StatusSuccessResponse(c, nil)
}

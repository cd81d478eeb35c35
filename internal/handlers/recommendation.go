// recommendation.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/matching"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecommendationHandler handles recommendation and ledger routes
type RecommendationHandler struct {
	DB     *gorm.DB
	Engine *matching.Engine
	Log    *zap.Logger
}

// RecommendationsResponse is the success envelope for ranked listings
type RecommendationsResponse struct {
	Status          string                    `json:"status"`
	Recommendations []services.Recommendation `json:"recommendations"`
	TotalCount      int                       `json:"total_count"`
}

// RatingInput is the body of a rating
type RatingInput struct {
	Rating int `json:"rating"`
}

func recommendations(c *fiber.Ctx, recs []services.Recommendation) error {
	if recs == nil {
		recs = []services.Recommendation{}
	}
	return c.Status(fiber.StatusOK).JSON(RecommendationsResponse{
		Status:          "success",
		Recommendations: recs,
		TotalCount:      len(recs),
	})
}

// Recommend handles GET and POST /api/recommendations
// @Summary Recommend listings
// @Description Ranks approved listings against my preferences and records new pairs in the ledger
// @Tags Recommendations
// @Produce json
// @Success 200 {object} RecommendationsResponse
// @Failure 404 {object} utils.StatusErrorStruct
// @Failure 500 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /recommendations [get]
// @Router /recommendations [post]
func (h *RecommendationHandler) Recommend(c *fiber.Ctx) error {
	recs, err := services.Recommend(c.UserContext(), h.DB, h.Engine, userID(c))
	if err != nil {
		return failStatus(c, h.Log, "recommend", err)
	}
	return recommendations(c, recs)
}

// Refresh handles POST /api/recommendations/refresh
// @Summary Recommend listings and overwrite stored scores
// @Tags Recommendations
// @Produce json
// @Success 200 {object} RecommendationsResponse
// @Failure 404 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /recommendations/refresh [post]
func (h *RecommendationHandler) Refresh(c *fiber.Ctx) error {
	recs, err := services.RefreshRecommendations(c.UserContext(), h.DB, h.Engine, userID(c))
	if err != nil {
		return failStatus(c, h.Log, "refreshRecommendations", err)
	}
	return recommendations(c, recs)
}

// History handles GET /api/recommendations/history
// @Summary My recommendation history, newest first
// @Tags Recommendations
// @Produce json
// @Param limit query int false "How many" default(10)
// @Success 200 {object} map[string]interface{}
// @Security CookieAuth
// @Router /recommendations/history [get]
func (h *RecommendationHandler) History(c *fiber.Ctx) error {
	records, err := services.History(c.UserContext(), h.DB, userID(c), c.QueryInt("limit", services.DefaultHistoryLimit))
	if err != nil {
		return failStatus(c, h.Log, "recommendationHistory", err)
	}
	return utils.StatusSuccessResponse(c, fiber.Map{
		"history":     records,
		"total_count": len(records),
	})
}

// MarkViewed handles POST /api/recommendations/:id/viewed
// @Summary Mark a recommendation viewed
// @Tags Recommendations
// @Produce json
// @Param id path int true "Recommendation id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /recommendations/{id}/viewed [post]
func (h *RecommendationHandler) MarkViewed(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.MarkViewed(c.UserContext(), h.DB, userID(c), id)
	if err != nil {
		return failStatus(c, h.Log, "markViewed", err)
	}
	return utils.StatusSuccessResponse(c, fiber.Map{"recommendation": rec})
}

// MarkClicked handles POST /api/recommendations/:id/clicked
// @Summary Mark a recommendation clicked
// @Tags Recommendations
// @Produce json
// @Param id path int true "Recommendation id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /recommendations/{id}/clicked [post]
func (h *RecommendationHandler) MarkClicked(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.MarkClicked(c.UserContext(), h.DB, userID(c), id)
	if err != nil {
		return failStatus(c, h.Log, "markClicked", err)
	}
	return utils.StatusSuccessResponse(c, fiber.Map{"recommendation": rec})
}

// Rate handles POST /api/recommendations/:id/rating
// @Summary Rate a recommendation from 1 to 5
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param id path int true "Recommendation id"
// @Param body body RatingInput true "Rating"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.StatusErrorStruct
// @Failure 404 {object} utils.StatusErrorStruct
// @Security CookieAuth
// @Router /recommendations/{id}/rating [post]
func (h *RecommendationHandler) Rate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in RatingInput
	if err := c.BodyParser(&in); err != nil {
		return utils.StatusErrorResponse(c, MsgInvalidBody, fiber.StatusBadRequest)
	}
	rec, err := services.RateRecommendation(c.UserContext(), h.DB, userID(c), id, in.Rating)
	if err != nil {
		return failStatus(c, h.Log, "rateRecommendation", err)
	}
	return utils.StatusSuccessResponse(c, fiber.Map{"recommendation": rec})
}

// common.go
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
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/middleware"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/types"
	"github.com/localnerve/carmart/internal/utils"
	"go.uber.org/zap"
)

// Fixed user-facing messages
const (
	MsgPreferenceNotConfigured = "Please configure your preferences first"
	MsgInvalidBudgetBand       = "Invalid budget range"
	MsgInvalidStatus           = "Invalid listing status"
	MsgInvalidTransition       = "The listing cannot move to that status"
	MsgInvalidRating           = "Rating must be between 1 and 5"
	MsgNotFound                = "Resource not found"
	MsgForbidden               = "You are not allowed to do that"
	MsgInvalidBody             = "Request body is not valid JSON"
	MsgInvalidID               = "Invalid id"
	MsgInternal                = "Internal server error, please try again later"
)

// classify maps a service error to an HTTP status and a message safe to return
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrPreferenceNotConfigured):
		return fiber.StatusNotFound, MsgPreferenceNotConfigured
	case errors.Is(err, types.ErrInvalidBudgetBand):
		return fiber.StatusBadRequest, MsgInvalidBudgetBand
	case errors.Is(err, types.ErrInvalidStatus):
		return fiber.StatusBadRequest, MsgInvalidStatus
	case errors.Is(err, types.ErrInvalidRating):
		return fiber.StatusBadRequest, MsgInvalidRating
	case errors.Is(err, types.ErrInvalidInput):
		// validation text names fields only
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrNotFound):
		return fiber.StatusNotFound, MsgNotFound
	case errors.Is(err, types.ErrForbidden):
		return fiber.StatusForbidden, MsgForbidden
	case errors.Is(err, types.ErrInvalidTransition):
		return fiber.StatusConflict, MsgInvalidTransition
	case errors.Is(err, types.ErrConflict):
		return fiber.StatusConflict, err.Error()
	}
	return fiber.StatusInternalServerError, MsgInternal
}

// logFailure records internal errors; client errors are not worth a log line
func logFailure(log *zap.Logger, c *fiber.Ctx, op string, status int, err error) {
	if status < fiber.StatusInternalServerError {
		return
	}
	fields := []zap.Field{zap.String("op", op), zap.String("path", c.Path()), zap.Error(err)}
	var se *types.StoreError
	if errors.As(err, &se) {
		fields = append(fields, zap.String("store_op", se.Op))
	}
	log.Error("request failed", fields...)
}

// fail writes a catalog-surface error response
func fail(c *fiber.Ctx, log *zap.Logger, op string, err error) error {
	status, message := classify(err)
	logFailure(log, c, op, status, err)
	return utils.ErrorResponse(c, message, status, op)
}

// failStatus writes a buyer-surface error response
func failStatus(c *fiber.Ctx, log *zap.Logger, op string, err error) error {
	status, message := classify(err)
	logFailure(log, c, op, status, err)
	return utils.StatusErrorResponse(c, message, status)
}

// StatusErrors renders errors raised on buyer routes, including those from
// the auth guard and path parsing, as {"status": "error", "message": ...}
func StatusErrors(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var ce *types.CustomError
		var fe *fiber.Error
		switch {
		case errors.As(err, &ce):
			return utils.StatusErrorResponse(c, ce.Message, ce.Code)
		case errors.As(err, &fe):
			return utils.StatusErrorResponse(c, fe.Message, fe.Code)
		}
		return failStatus(c, log, "buyerRoute", err)
	}
}

// actorFrom returns the caller as the services see it; anonymous when the
// route has no principal
func actorFrom(c *fiber.Ctx) services.Actor {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		return services.Actor{}
	}
	return services.Actor{UserID: p.UserID, Admin: p.HasRole(types.RoleAdmin)}
}

// userID returns the authenticated user id. Routes using it sit behind the
// auth middleware.
func userID(c *fiber.Ctx) string {
	if p := middleware.PrincipalFrom(c); p != nil {
		return p.UserID
	}
	return ""
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, MsgInvalidID)
	}
	return id, nil
}

// queryUint parses an optional numeric query parameter, ignoring junk
func queryUint(c *fiber.Ctx, name string) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

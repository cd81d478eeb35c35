// auth.go
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

package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/types"
	"go.uber.org/zap"
)

const (
	// SessionCookie is the Authorizer session cookie name
	SessionCookie = "cookie_session"

	// Development identity headers, honoured only when authorization is disabled
	HeaderUserID    = "X-User-Id"
	HeaderUserRoles = "X-User-Roles"

	localPrincipal = "principal"
)

// Messages returned by the guards; the underlying cause is only logged
const (
	MsgSignInRequired = "Please sign in to continue"
	MsgRoleRequired   = "Your account cannot access this resource"
)

// SessionValidator resolves a session cookie to a principal
type SessionValidator func(cookie string) (*services.Principal, error)

// Auth builds the authorization middleware
type Auth struct {
	Validate SessionValidator
	Disabled bool
	Log      *zap.Logger
}

// NewAuth returns middleware backed by the Authorizer, or by the development
// identity headers when disabled is true
func NewAuth(disabled bool, log *zap.Logger) *Auth {
	if disabled {
		log.Warn("authorization disabled, trusting " + HeaderUserID + " headers")
	}
	return &Auth{Validate: services.ValidateSession, Disabled: disabled, Log: log}
}

// User requires any authenticated session
func (a *Auth) User() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return a.authorize(c, nil, "carmart.authorization.user")
	}
}

// Seller requires the seller or admin role
func (a *Auth) Seller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return a.authorize(c, []string{types.RoleSeller, types.RoleAdmin}, "carmart.authorization.seller")
	}
}

// Admin requires the admin role
func (a *Auth) Admin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return a.authorize(c, []string{types.RoleAdmin}, "carmart.authorization.admin")
	}
}

// Optional resolves the principal when a session is present and continues
// anonymously otherwise
func (a *Auth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, err := a.principal(c); err == nil {
			c.Locals(localPrincipal, p)
		}
		return c.Next()
	}
}

// authorize performs the authorization check
func (a *Auth) authorize(c *fiber.Ctx, roles []string, errorType string) error {
	p, err := a.principal(c)
	if err != nil {
		a.Log.Debug("authorization failed", zap.String("path", c.Path()), zap.Error(err))
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: MsgSignInRequired,
			Type:    errorType,
		}
	}

	if len(roles) > 0 && !p.HasRole(roles...) {
		a.Log.Debug("missing role",
			zap.String("path", c.Path()),
			zap.String("user_id", p.UserID),
			zap.Strings("required", roles),
		)
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: MsgRoleRequired,
			Type:    errorType,
		}
	}

	c.Locals(localPrincipal, p)
	return c.Next()
}

func (a *Auth) principal(c *fiber.Ctx) (*services.Principal, error) {
	if a.Disabled {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			return nil, fmt.Errorf("Header %q not found", HeaderUserID)
		}
		p := &services.Principal{UserID: userID}
		for _, r := range strings.Split(c.Get(HeaderUserRoles), ",") {
			if r = strings.TrimSpace(r); r != "" {
				p.Roles = append(p.Roles, r)
			}
		}
		return p, nil
	}

	session := c.Cookies(SessionCookie)
	if session == "" {
		return nil, fmt.Errorf("Authorizer cookie %q not found", SessionCookie)
	}

	p, err := a.Validate(session)
	if err != nil {
		return nil, fmt.Errorf("Invalid session: %v", err)
	}
	return p, nil
}

// PrincipalFrom returns the principal stored by the auth middleware, or nil
func PrincipalFrom(c *fiber.Ctx) *services.Principal {
	p, _ := c.Locals(localPrincipal).(*services.Principal)
	return p
}

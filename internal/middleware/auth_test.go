package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carmart/internal/middleware"
	"github.com/localnerve/carmart/internal/services"
	"github.com/localnerve/carmart/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeValidator(cookie string) (*services.Principal, error) {
	switch cookie {
	case "buyer":
		return &services.Principal{UserID: "u-1", Roles: []string{"user"}}, nil
	case "admin":
		return &services.Principal{UserID: "u-2", Roles: []string{"user", "admin"}}, nil
	}
	return nil, services.ErrSessionInvalid
}

func testApp(guard fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	app.Get("/", guard, func(c *fiber.Ctx) error {
		if p := middleware.PrincipalFrom(c); p != nil {
			return c.SendString(p.UserID)
		}
		return c.SendString("anonymous")
	})
	return app
}

func do(t *testing.T, app *fiber.App, cookie string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: cookie})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthWithSessionCookie(t *testing.T) {
	auth := &middleware.Auth{Validate: fakeValidator, Log: zap.NewNop()}

	user := testApp(auth.User())
	assert.Equal(t, http.StatusForbidden, do(t, user, ""))
	assert.Equal(t, http.StatusForbidden, do(t, user, "forged"))
	assert.Equal(t, http.StatusOK, do(t, user, "buyer"))

	admin := testApp(auth.Admin())
	assert.Equal(t, http.StatusForbidden, do(t, admin, "buyer"))
	assert.Equal(t, http.StatusOK, do(t, admin, "admin"))

	seller := testApp(auth.Seller())
	assert.Equal(t, http.StatusForbidden, do(t, seller, "buyer"))
	assert.Equal(t, http.StatusOK, do(t, seller, "admin"))

	optional := testApp(auth.Optional())
	assert.Equal(t, http.StatusOK, do(t, optional, ""))
	assert.Equal(t, http.StatusOK, do(t, optional, "forged"))
}

func TestAuthDisabledUsesHeaders(t *testing.T) {
	auth := middleware.NewAuth(true, zap.NewNop())
	app := testApp(auth.Seller())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderUserID, "s-1")
	req.Header.Set(middleware.HeaderUserRoles, "user, seller")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	for _, v := range []string{"", "1", "1.0", "1.0.0"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if v != "" {
			req.Header.Set("X-Api-Version", v)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, v)
		assert.Equal(t, middleware.APIVersion, resp.Header.Get("X-Api-Version"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Api-Version", "3")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthFailuresUseFixedMessages(t *testing.T) {
	auth := &middleware.Auth{Validate: fakeValidator, Log: zap.NewNop()}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if !errors.As(err, &ce) {
				return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
			}
			return c.Status(ce.Code).SendString(ce.Message)
		},
	})
	app.Get("/user", auth.User(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/admin", auth.Admin(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	cases := []struct {
		path, cookie, want string
	}{
		{"/user", "", middleware.MsgSignInRequired},
		{"/user", "forged", middleware.MsgSignInRequired},
		{"/admin", "buyer", middleware.MsgRoleRequired},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.cookie != "" {
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tc.cookie})
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.want, string(body), tc.path+" "+tc.cookie)
	}
}

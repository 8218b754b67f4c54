package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"harvestease-backend/internal/auth"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := auth.CallerID(c)
		if !ok {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		role, _ := auth.CallerRole(c)
		return c.JSON(fiber.Map{"user_id": id, "role": role})
	}
}

func TestOptionalMiddlewareLetsAnonymousThrough(t *testing.T) {
	cfg := testConfig()
	app := testutil.NewApp()
	app.Get("/whoami", auth.OptionalJWTMiddleware(cfg), whoami())

	req := httptest.NewRequest("GET", "/whoami", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalMiddlewareRejectsMalformedToken(t *testing.T) {
	cfg := testConfig()
	app := testutil.NewApp()
	app.Get("/whoami", auth.OptionalJWTMiddleware(cfg), whoami())

	// Presenting a broken credential is an error, not anonymity.
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalMiddlewareAttachesIdentity(t *testing.T) {
	cfg := testConfig()
	app := testutil.NewApp()
	app.Get("/whoami", auth.OptionalJWTMiddleware(cfg), whoami())

	user := &models.User{ID: 42, Email: "sunil@example.com", Role: models.RoleFarmer}
	token, err := auth.GenerateToken(cfg.JWTSecret, cfg.JWTExpiryHours, user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint(42), body.UserID)
	assert.Equal(t, "farmer", body.Role)
}

func TestRequireRole(t *testing.T) {
	app := testutil.NewApp()
	app.Get("/admin-only",
		testutil.AsUser(5, models.RoleFarmer),
		auth.RequireRole(models.RoleAdmin),
		whoami())

	req := httptest.NewRequest("GET", "/admin-only", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	app = testutil.NewApp()
	app.Get("/admin-only",
		testutil.AsUser(5, models.RoleAdmin),
		auth.RequireRole(models.RoleAdmin),
		whoami())

	req = httptest.NewRequest("GET", "/admin-only", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	app := testutil.NewApp()
	app.Get("/admin-only", auth.RequireRole(models.RoleAdmin), whoami())

	req := httptest.NewRequest("GET", "/admin-only", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

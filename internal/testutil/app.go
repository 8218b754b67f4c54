package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"harvestease-backend/internal/auth"
	"harvestease-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// NewApp builds a Fiber app with the same error handler shape the
// server uses, so handler errors come back as {"error": msg}.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
}

// AsUser attaches a fixed identity, standing in for the JWT middleware.
func AsUser(userID uint, role models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, userID)
		c.Locals(auth.CtxUserRoleKey, role)
		return c.Next()
	}
}

// DoJSON performs a request with an optional JSON payload and decodes
// the JSON response into out when non-nil. Returns the status code.
func DoJSON(t *testing.T, app *fiber.App, method, target string, payload any, out any) int {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response of %s %s: %v", method, target, err)
		}
	}
	return resp.StatusCode
}

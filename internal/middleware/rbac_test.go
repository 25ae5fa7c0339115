package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newRBACApp(role interface{}, allowed ...string) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		func(c *fiber.Ctx) error {
			if role != nil {
				c.Locals("user_role", role)
			}
			return c.Next()
		},
		RequireRole(allowed...),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    interface{}
		allowed []string
		status  int
	}{
		{"exact match", "ADMIN", []string{"ADMIN"}, fiber.StatusOK},
		{"one of several", "TEACHER", []string{"ADMIN", "TEACHER"}, fiber.StatusOK},
		{"case insensitive", "teacher", []string{"TEACHER"}, fiber.StatusOK},
		{"wrong role", "STUDENT", []string{"ADMIN", "TEACHER"}, fiber.StatusForbidden},
		{"no role bound", nil, []string{"ADMIN"}, fiber.StatusForbidden},
		{"no roles allowed", "ADMIN", nil, fiber.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newRBACApp(tc.role, tc.allowed...)
			resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

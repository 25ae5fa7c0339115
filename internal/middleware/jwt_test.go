package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		return c.JSON(fiber.Map{"id": id, "role": UserRole(c)})
	})
	return app
}

func TestJWTProtectedBindsIdentity(t *testing.T) {
	app := newProtectedApp()

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(42),
		"role": "teacher",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejections(t *testing.T) {
	app := newProtectedApp()

	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc123"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong signing key", "Bearer " + wrongKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestSubjectFromClaims(t *testing.T) {
	id, err := subjectFromClaims(jwt.MapClaims{"sub": float64(7)})
	require.NoError(t, err)
	require.Equal(t, uint(7), id)

	id, err = subjectFromClaims(jwt.MapClaims{"sub": "19"})
	require.NoError(t, err)
	require.Equal(t, uint(19), id)

	_, err = subjectFromClaims(jwt.MapClaims{})
	require.Error(t, err)

	_, err = subjectFromClaims(jwt.MapClaims{"sub": true})
	require.Error(t, err)
}

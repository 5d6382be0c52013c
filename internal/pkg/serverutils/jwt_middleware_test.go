package serverutils

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthedApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		userId, ok := ctx.Locals("user_id").(uuid.UUID)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return ctx.SendString(userId.String())
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJwtMiddlewareStoresParsedUserId(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newAuthedApp()

	userId := uuid.New()
	token := signToken(t, "test-secret", jwt.MapClaims{"user_id": userId.String()})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, userId.String(), string(body))
}

func TestJwtMiddlewareRejectsBadUserIdClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newAuthedApp()

	for name, claims := range map[string]jwt.MapClaims{
		"missing":    {"sub": "someone"},
		"not a uuid": {"user_id": "not-a-uuid"},
		"wrong type": {"user_id": 42},
	} {
		token := signToken(t, "test-secret", claims)
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		res, err := app.Test(req)
		require.NoError(t, err, name)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode, name)
	}
}

func TestJwtMiddlewareRejectsMissingOrForgedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newAuthedApp()

	req := httptest.NewRequest("GET", "/me", nil)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	forged := signToken(t, "other-secret", jwt.MapClaims{"user_id": uuid.NewString()})
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doPost(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimiterBlocksAfterFiveAttempts(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimiter(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, fiber.StatusOK, doPost(t, app, "/login"), "percobaan ke-%d", i+1)
	}
	assert.Equal(t, fiber.StatusTooManyRequests, doPost(t, app, "/login"))
}

func TestRegisterRateLimiterBlocksAfterThreeAttempts(t *testing.T) {
	app := fiber.New()
	app.Post("/register", RegisterRateLimiter(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, fiber.StatusCreated, doPost(t, app, "/register"), "percobaan ke-%d", i+1)
	}
	assert.Equal(t, fiber.StatusTooManyRequests, doPost(t, app, "/register"))
}

package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeOf(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &body))
	return resp.StatusCode, body
}

func TestJSONSuccess(t *testing.T) {
	code, body := envelopeOf(t, func(c *fiber.Ctx) error {
		return JSONSuccess(c, fiber.StatusOK, fiber.Map{"groups": 2})
	})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["data"].(map[string]interface{})["groups"])
	assert.NotContains(t, body, "error")
}

func TestJSONError(t *testing.T) {
	code, body := envelopeOf(t, func(c *fiber.Ctx) error {
		return JSONError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
	})
	assert.Equal(t, fiber.StatusTooManyRequests, code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "rate limit exceeded", body["error"])
	assert.NotContains(t, body, "data")
}

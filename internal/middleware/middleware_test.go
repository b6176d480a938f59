package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLimiter(t *testing.T) {
	cl := NewConnectionLimiter(2)
	assert.True(t, cl.Acquire())
	assert.True(t, cl.Acquire())
	assert.False(t, cl.Acquire())
	cl.Release()
	assert.True(t, cl.Acquire())
}

func TestConnectionLimiterMiddleware_Full(t *testing.T) {
	limiter := NewConnectionLimiter(1)
	require.True(t, limiter.Acquire())

	app := fiber.New()
	app.Use(connectionLimiterMiddleware(limiter))
	app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRegister_RecoversPanics(t *testing.T) {
	app := fiber.New()
	Register(app, 4)
	app.Get("/boom", func(c fiber.Ctx) error { panic("boom") })
	app.Get("/ok", func(c fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

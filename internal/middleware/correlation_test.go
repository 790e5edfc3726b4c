package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func correlationApp(t *testing.T) (*fiber.App, *string) {
	t.Helper()

	var seen string
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		seen = GetCorrelationID(c)
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &seen
}

func TestCorrelationIDEchoesCallerHeader(t *testing.T) {
	app, seen := correlationApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))
	require.Equal(t, "req-123", *seen)
}

func TestCorrelationIDMintsWhenAbsent(t *testing.T) {
	app, seen := correlationApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
	require.Equal(t, resp.Header.Get("X-Correlation-ID"), *seen)
}

func TestContextWithCorrelationSurvivesDetachedContexts(t *testing.T) {
	ctx := ContextWithCorrelation(context.Background(), " req-9 ")
	require.Equal(t, "req-9", ctx.Value(correlationCtxKey{}))

	ctx = ContextWithCorrelation(context.Background(), "  ")
	require.Nil(t, ctx.Value(correlationCtxKey{}))
}

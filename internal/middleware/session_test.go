package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/session"
)

const testCookie = "copo_session"

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewStore(client, time.Hour)
}

func sessionApp(guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(guard)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		userID, _ := c.Locals(LocalUserID).(uint)
		return c.JSON(fiber.Map{"user_id": userID})
	})
	return app
}

func TestSessionProtectedRejectsMissingCookie(t *testing.T) {
	store := newSessionStore(t)
	app := sessionApp(SessionProtected(store, testCookie))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedRejectsStaleCookie(t *testing.T) {
	store := newSessionStore(t)
	app := sessionApp(SessionProtected(store, testCookie))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "no-such-session"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionProtectedBindsActor(t *testing.T) {
	store := newSessionStore(t)

	departmentID := uint(7)
	sessionID, err := store.Create(context.Background(), session.Session{
		UserID:       42,
		Role:         models.RoleHOD,
		DepartmentID: &departmentID,
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(SessionProtected(store, testCookie))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		require.Equal(t, uint(42), c.Locals(LocalUserID))
		require.Equal(t, models.RoleHOD, c.Locals(LocalUserRole))
		require.Equal(t, uint(7), c.Locals(LocalDepartmentID))
		require.Equal(t, sessionID, c.Locals(LocalSessionID))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: sessionID})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionOptionalNeverRejects(t *testing.T) {
	store := newSessionStore(t)
	app := sessionApp(SessionOptional(store, testCookie))

	// No cookie at all.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// A dead cookie is treated as anonymous, not as an error.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "expired"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

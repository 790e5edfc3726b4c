package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/utils"
)

type recorderSpy struct {
	entries chan models.ActivityLog
}

func newRecorderSpy() *recorderSpy {
	return &recorderSpy{entries: make(chan models.ActivityLog, 8)}
}

func (r *recorderSpy) Record(ctx context.Context, entry models.ActivityLog) error {
	r.entries <- entry
	return nil
}

func (r *recorderSpy) wait(t *testing.T) models.ActivityLog {
	t.Helper()
	select {
	case entry := <-r.entries:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("no activity log recorded")
		return models.ActivityLog{}
	}
}

func (r *recorderSpy) expectNone(t *testing.T) {
	t.Helper()
	select {
	case entry := <-r.entries:
		t.Fatalf("unexpected activity log: %+v", entry)
	case <-time.After(100 * time.Millisecond):
	}
}

func auditApp(recorder AuditRecorder, authenticated bool) *fiber.App {
	app := fiber.New()
	if authenticated {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(LocalUserID, uint(42))
			c.Locals(LocalUserRole, models.RoleAdmin)
			return c.Next()
		})
	}
	app.Use(AuditCRUD("subject", recorder, zerolog.Nop()))
	app.Post("/subjects", func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", fiber.Map{"id": 7})
	})
	app.Delete("/subjects/:id", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "subject deleted", nil)
	})
	app.Post("/broken", func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusConflict, "duplicate")
	})
	app.Get("/subjects", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "subjects", nil)
	})
	return app
}

func TestAuditRecordsMutationsWithEntityID(t *testing.T) {
	spy := newRecorderSpy()
	app := auditApp(spy, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/subjects", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	entry := spy.wait(t)
	require.Equal(t, uint(42), entry.UserID)
	require.Equal(t, models.RoleAdmin, entry.Role)
	require.Equal(t, "create", entry.Action)
	require.Equal(t, "subject", entry.EntityType)
	require.NotNil(t, entry.EntityID)
	require.Equal(t, uint(7), *entry.EntityID)
}

func TestAuditDerivesActionFromMethod(t *testing.T) {
	spy := newRecorderSpy()
	app := auditApp(spy, true)

	_, err := app.Test(httptest.NewRequest(http.MethodDelete, "/subjects/7", nil))
	require.NoError(t, err)

	entry := spy.wait(t)
	require.Equal(t, "delete", entry.Action)
}

func TestAuditSkipsFailedAndAnonymousRequests(t *testing.T) {
	spy := newRecorderSpy()

	app := auditApp(spy, true)
	_, err := app.Test(httptest.NewRequest(http.MethodPost, "/broken", nil))
	require.NoError(t, err)
	spy.expectNone(t)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/subjects", nil))
	require.NoError(t, err)
	spy.expectNone(t)

	anonymous := auditApp(spy, false)
	_, err = anonymous.Test(httptest.NewRequest(http.MethodPost, "/subjects", nil))
	require.NoError(t, err)
	spy.expectNone(t)
}

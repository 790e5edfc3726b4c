package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/models"
)

const auditRecordTimeout = 5 * time.Second

// AuditRecorder persists one audit trail entry.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.ActivityLog) error
}

// WithAudit wraps a mutating route: after the handler produces a 2xx
// response for an authenticated actor, exactly one activity log entry is
// recorded. Recording is fire-and-forget; a failing recorder never
// blocks or fails the response.
func WithAudit(action, entityType string, recorder AuditRecorder, logger zerolog.Logger) fiber.Handler {
	auditLogger := logger.With().Str("component", "audit").Logger()

	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		userID, ok := c.Locals(LocalUserID).(uint)
		if !ok || userID == 0 {
			return nil
		}
		role, _ := c.Locals(LocalUserRole).(models.Role)

		entityID := extractEntityID(c.Response().Body())
		details := fmt.Sprintf("%s %s", action, entityType)
		if entityID != nil {
			details = fmt.Sprintf("%s #%d", details, *entityID)
		}

		entry := models.ActivityLog{
			UserID:     userID,
			Role:       role,
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			Details:    details,
		}

		// Detached from the request lifecycle on purpose.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), auditRecordTimeout)
			defer cancel()

			if err := recorder.Record(ctx, entry); err != nil {
				auditLogger.Warn().Err(err).
					Str("action", action).
					Str("entity_type", entityType).
					Uint("user_id", userID).
					Msg("failed to record activity log")
			}
		}()

		return nil
	}
}

// AuditCRUD audits every mutating verb on a route group, deriving the
// action from the HTTP method. Reads pass through untouched.
func AuditCRUD(entityType string, recorder AuditRecorder, logger zerolog.Logger) fiber.Handler {
	create := WithAudit("create", entityType, recorder, logger)
	update := WithAudit("update", entityType, recorder, logger)
	remove := WithAudit("delete", entityType, recorder, logger)

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost:
			return create(c)
		case fiber.MethodPut, fiber.MethodPatch:
			return update(c)
		case fiber.MethodDelete:
			return remove(c)
		default:
			return c.Next()
		}
	}
}

// extractEntityID pulls data.id out of the response envelope, if present.
func extractEntityID(body []byte) *uint {
	if len(body) == 0 {
		return nil
	}

	var envelope struct {
		Data struct {
			ID *uint `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	return envelope.Data.ID
}

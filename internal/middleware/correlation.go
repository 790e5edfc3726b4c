package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalCorrelationID is the fiber locals key carrying the request's
// correlation identifier.
const LocalCorrelationID = "correlation_id"

const correlationHeader = "X-Correlation-ID"

type correlationCtxKey struct{}

// CorrelationID tags every request with a correlation identifier so a
// single API call can be followed through logs and the audit trail.
// An identifier supplied by the caller is reused; otherwise one is
// minted.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(correlationHeader))
		if id == "" {
			id = strings.TrimSpace(c.Get("X-Request-ID"))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(LocalCorrelationID, id)
		c.Set(correlationHeader, id)
		c.SetUserContext(context.WithValue(c.Context(), correlationCtxKey{}, id))

		return c.Next()
	}
}

// GetCorrelationID returns the identifier bound to the active request,
// or an empty string outside the request pipeline.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(LocalCorrelationID).(string); ok {
		return id
	}
	if id, ok := c.Context().Value(correlationCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// ContextWithCorrelation carries a request's identifier into contexts
// that outlive the request, such as detached audit writes.
func ContextWithCorrelation(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationCtxKey{}, id)
}

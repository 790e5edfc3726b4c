package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/copo-api/internal/session"
	"github.com/noah-isme/copo-api/internal/utils"
)

// Locals keys populated by SessionProtected.
const (
	LocalUserID       = "user_id"
	LocalUserRole     = "user_role"
	LocalDepartmentID = "department_id"
	LocalSessionID    = "session_id"
)

// SessionOptional resolves the session cookie when present but never
// rejects the request. Routes that behave differently for anonymous and
// authenticated callers use this instead of SessionProtected.
func SessionOptional(store *session.Store, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(cookieName)
		if sessionID == "" {
			return c.Next()
		}

		sess, err := store.Get(c.UserContext(), sessionID)
		if err != nil {
			return c.Next()
		}

		c.Locals(LocalUserID, sess.UserID)
		c.Locals(LocalUserRole, sess.Role)
		if sess.DepartmentID != nil {
			c.Locals(LocalDepartmentID, *sess.DepartmentID)
		}
		c.Locals(LocalSessionID, sessionID)

		return c.Next()
	}
}

// SessionProtected resolves the session cookie against the server-side
// store and binds the actor onto the request context. Requests without a
// live session are rejected with 401.
func SessionProtected(store *session.Store, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(cookieName)
		if sessionID == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		sess, err := store.Get(c.UserContext(), sessionID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "session expired")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve session")
		}

		c.Locals(LocalUserID, sess.UserID)
		c.Locals(LocalUserRole, sess.Role)
		if sess.DepartmentID != nil {
			c.Locals(LocalDepartmentID, *sess.DepartmentID)
		}
		c.Locals(LocalSessionID, sessionID)

		return c.Next()
	}
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/utils"
)

// RequireRole gates a route to a fixed allow-list of roles. There is no
// hierarchy between roles; every route declares its own set.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if role.Valid() {
			allowed[role] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if c.Locals(LocalUserID) == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		role, ok := c.Locals(LocalUserRole).(models.Role)
		if !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		if _, permitted := allowed[role]; !permitted {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}

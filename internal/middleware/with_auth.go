package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kboateng/adesua-go-api/internal/utils"
)

// Auth role constants used by the WithAuth helper. AuthRoleAdmin admits both
// admins and teachers, mirroring the staff surfaces of the API.
const (
	AuthRoleAny     = "any"
	AuthRoleAdmin   = "admin"
	AuthRoleStudent = "student"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	// Role names the role the caller must hold. AuthRoleAny accepts any
	// authenticated user.
	Role string
	// AllowAnonymous skips the authentication check on AuthRoleAny routes.
	// Role-gated routes always require an authenticated user.
	AllowAnonymous bool
}

// WithAuth wraps a single handler with authentication and role guards. It
// complements RequireRole for routes whose access rules differ from the rest
// of their group.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := !opts.AllowAnonymous || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if role == AuthRoleAny {
			return handler(c)
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		switch role {
		case AuthRoleStudent:
			if currentRole != "student" {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		case AuthRoleAdmin:
			if currentRole != "admin" && currentRole != "teacher" {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		default:
			if currentRole != role {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		}

		return handler(c)
	}
}

package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/easyevent/internal/domain"
	apperrors "github.com/spec-kit/easyevent/pkg/util"
)

// Authorize is the capability gate: admins always pass, role members pass,
// and for resource-scoped operations the resource owner passes regardless
// of role. A nil user is an authentication failure, not an authorization
// one; the two are reported with distinct errors.
func Authorize(user *domain.User, required []domain.Role, resourceOwnerID *string) error {
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if user.IsAdmin() {
		return nil
	}
	for _, role := range required {
		if user.Role == role {
			return nil
		}
	}
	if resourceOwnerID != nil && user.ID == *resourceOwnerID {
		return nil
	}
	return apperrors.NewForbidden("insufficient permissions")
}

// RequireRoles ensures the authenticated caller holds one of the allowed
// roles. Admins always pass.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(user, allowed, nil); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to administrators.
func RequireAdmin() fiber.Handler {
	return RequireRoles()
}

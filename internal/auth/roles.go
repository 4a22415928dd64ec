package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-engine/internal/domain"
	apperrors "github.com/spec-kit/intake-engine/pkg/util/errorutil"
)

// RequireStaffRole admits an authenticated staff principal whose role is
// in allowed. With no roles given any authenticated staff member passes.
// It must run after AuthMiddleware.Handle.
func RequireStaffRole(allowed ...domain.StaffRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Staff == nil {
			return apperrors.NewForbidden("staff role required")
		}
		if len(allowed) == 0 || hasRole(allowed, principal.Role) {
			return c.Next()
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

func hasRole(allowed []domain.StaffRole, role domain.StaffRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

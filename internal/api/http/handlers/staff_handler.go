package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-engine/internal/api/dto"
	"github.com/spec-kit/intake-engine/internal/domain"
	apperrors "github.com/spec-kit/intake-engine/pkg/util/errorutil"
)

// StaffAuthenticator logs staff members in.
type StaffAuthenticator interface {
	LoginStaff(ctx context.Context, email, password string) (*domain.StaffMember, string, time.Time, error)
}

// StaffHandler exposes staff/auth endpoints.
type StaffHandler struct {
	auth StaffAuthenticator
}

// NewStaffHandler constructs handler.
func NewStaffHandler(auth StaffAuthenticator) *StaffHandler {
	return &StaffHandler{auth: auth}
}

// Login handles POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	staff, token, exp, err := h.auth.LoginStaff(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff": dto.NewStaffResponse(staff),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

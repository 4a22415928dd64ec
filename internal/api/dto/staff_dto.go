package dto

import (
	"time"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StaffResponse is the public view of a staff member.
type StaffResponse struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email"`
	Role   domain.StaffRole `json:"role"`
	Team   *string          `json:"team,omitempty"`
	Active bool             `json:"active"`
}

// NewStaffResponse builds a StaffResponse.
func NewStaffResponse(s *domain.StaffMember) StaffResponse {
	return StaffResponse{
		ID:     s.ID,
		Name:   s.Name,
		Email:  s.Email,
		Role:   s.Role,
		Team:   s.Team,
		Active: s.Active,
	}
}

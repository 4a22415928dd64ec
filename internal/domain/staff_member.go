package domain

import "time"

// StaffRole enumerates the roles allowed to act on the intake engine.
// Agents record resolutions and draft articles; leads and admins also
// publish them.
type StaffRole string

const (
	StaffRoleAgent    StaffRole = "AGENT"
	StaffRoleTeamLead StaffRole = "TEAM_LEAD"
	StaffRoleAdmin    StaffRole = "ADMIN"
)

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	switch r {
	case StaffRoleAgent, StaffRoleTeamLead, StaffRoleAdmin:
		return true
	}
	return false
}

// PublishingRoles may move knowledge articles out of draft.
var PublishingRoles = []StaffRole{StaffRoleTeamLead, StaffRoleAdmin}

// StaffMember models a support agent who records resolutions and curates
// knowledge articles.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Team         *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

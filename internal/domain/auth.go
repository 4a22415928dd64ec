package domain

import "time"

// Token describes an issued staff access token. The signed string itself
// is never stored.
type Token struct {
	ID        string
	SubjectID string
	Role      StaffRole
	IssuedAt  time.Time
	ExpiresAt time.Time
}


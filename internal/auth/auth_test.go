package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-engine/internal/domain"
	apperrors "github.com/spec-kit/intake-engine/pkg/util/errorutil"
)

type staffByID map[string]*domain.StaffMember

func (s staffByID) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	if m, ok := s[id]; ok {
		return m, nil
	}
	return nil, pgx.ErrNoRows
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
	assert.Error(t, ComparePassword("not-a-hash", "s3cret"))

	_, err = HashPassword("", 4)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "intake", 5)
	token, issued, err := tm.GenerateToken("staff-1", domain.StaffRoleAgent)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, 5*time.Minute, issued.ExpiresAt.Sub(issued.IssuedAt))

	parsed, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, parsed.ID)
	assert.Equal(t, "staff-1", parsed.SubjectID)
	assert.Equal(t, domain.StaffRoleAgent, parsed.Role)
	assert.True(t, issued.ExpiresAt.Equal(parsed.ExpiresAt))

	_, err = NewTokenManager("other", "intake", 5).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret", "someone-else", 5).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	tm := NewTokenManager("secret", "intake", 1)
	issuedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issuedAt }
	token, _, err := tm.GenerateToken("staff-1", domain.StaffRoleAdmin)
	require.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(time.Minute + 10*time.Second) }
	_, err = tm.ParseToken(token)
	assert.NoError(t, err, "within clock skew")

	tm.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	tm := NewTokenManager("secret", "intake", 5)
	token, _, err := tm.GenerateToken("staff-1", domain.StaffRole("END_USER"))
	require.NoError(t, err)
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newProtectedApp(tm *TokenManager, staff StaffLookup, roles ...domain.StaffRole) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		d := apperrors.ToDomainError(err)
		return c.Status(d.HTTPStatus).JSON(fiber.Map{"code": d.Code})
	}})
	mw := NewAuthMiddleware(tm, staff)
	app.Get("/protected", mw.Handle, RequireStaffRole(roles...), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Staff.Email)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", "intake", 5)
	staff := staffByID{
		"s1": {ID: "s1", Email: "agent@example.com", Role: domain.StaffRoleAgent, Active: true},
		"s2": {ID: "s2", Email: "gone@example.com", Role: domain.StaffRoleAgent, Active: false},
	}
	agentToken, _, err := tm.GenerateToken("s1", domain.StaffRoleAgent)
	require.NoError(t, err)
	inactiveToken, _, err := tm.GenerateToken("s2", domain.StaffRoleAgent)
	require.NoError(t, err)
	unknownToken, _, err := tm.GenerateToken("s9", domain.StaffRoleAgent)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		roles  []domain.StaffRole
		status int
	}{
		{name: "valid agent", header: "Bearer " + agentToken, status: http.StatusOK},
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "inactive staff", header: "Bearer " + inactiveToken, status: http.StatusUnauthorized},
		{name: "unknown staff", header: "Bearer " + unknownToken, status: http.StatusUnauthorized},
		{name: "role not allowed", header: "Bearer " + agentToken, roles: []domain.StaffRole{domain.StaffRoleAdmin}, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tm, staff, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

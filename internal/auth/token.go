package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/intake-engine/internal/domain"
)

// ErrInvalidToken wraps every token validation failure.
var ErrInvalidToken = errors.New("invalid token")

const clockSkew = 30 * time.Second

// TokenManager issues and validates HS256 staff access tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager. A non-positive ttl defaults to an hour.
func NewTokenManager(secret, issuer string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    time.Duration(ttlMinutes) * time.Minute,
		now:    time.Now,
	}
}

// Claims describes JWT payload.
type Claims struct {
	Role domain.StaffRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for a staff member and returns it with its
// metadata.
func (tm *TokenManager) GenerateToken(staffID string, role domain.StaffRole) (string, domain.Token, error) {
	meta := domain.Token{
		ID:        uuid.NewString(),
		SubjectID: staffID,
		Role:      role,
		IssuedAt:  tm.now().UTC().Truncate(time.Second),
	}
	meta.ExpiresAt = meta.IssuedAt.Add(tm.ttl)

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        meta.ID,
			Issuer:    tm.issuer,
			Subject:   staffID,
			IssuedAt:  jwt.NewNumericDate(meta.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(meta.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", domain.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, meta, nil
}

// ParseToken validates signature, issuer and expiry and returns the
// token's metadata.
func (tm *TokenManager) ParseToken(tokenStr string) (domain.Token, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return domain.Token{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return domain.Token{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}

	meta := domain.Token{ID: claims.ID, SubjectID: claims.Subject, Role: claims.Role}
	if claims.IssuedAt != nil {
		meta.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	meta.ExpiresAt = claims.ExpiresAt.Time.UTC()
	return meta, nil
}

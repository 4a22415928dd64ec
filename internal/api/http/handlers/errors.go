package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/intake-engine/internal/intake"
	"github.com/spec-kit/intake-engine/internal/service"
	apperrors "github.com/spec-kit/intake-engine/pkg/util/errorutil"
)

// serviceError maps service sentinels onto DomainErrors. Anything else is
// left for the error middleware.
func serviceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, intake.ErrUnknownSource):
		return apperrors.NewValidationError("unknown intake source", nil)
	case errors.Is(err, service.ErrInvalidInput):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, service.ErrConflict):
		return apperrors.NewConflict(err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, service.ErrPersistence):
		return apperrors.NewPersistenceError(err)
	}
	return err
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return serviceError(err)
}

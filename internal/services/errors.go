package services

import (
	"errors"
	"fmt"

	"go-do-list/backend/internal/apperrors"

	"gorm.io/gorm"
)

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error with the given
// message and wraps anything else with op for the logs.
func notFoundOr(err error, op string, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

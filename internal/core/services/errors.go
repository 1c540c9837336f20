package services

import (
	"fmt"

	"stockdesk/internal/core/domain"
)

// persistenceError marks a repository failure as domain.ErrPersistence while
// keeping the cause reachable through errors.Is / errors.As.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

package application

import (
	"errors"
	"fmt"

	"github.com/clockline/clockline/internal/domains/projects/domain"
)

// ErrInvalidInput signals the request violated a validation rule.
var ErrInvalidInput = errors.New("invalid project input")

// mapError translates domain validation failures into ErrInvalidInput while
// letting transition, business-rule, not-found, and storage errors pass
// through unchanged; the service adds no meaning of its own.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNameTooLong) ||
		errors.Is(err, domain.ErrDateOrder) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

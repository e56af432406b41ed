package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrSessionNotFound  = fmt.Errorf("session %w", ErrEntityNotFound)
	ErrRulesUnavailable = errors.New("safety rules unavailable")
	ErrGenerationFailed = errors.New("response generation failed")
	ErrEmptyQuery       = errors.New("query must not be empty")
)

type notFoundError struct {
	EntityType string
	ID         string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.EntityType, e.ID)
}

func (e *notFoundError) Unwrap() error {
	return ErrEntityNotFound
}

func NewNotFoundError(entityType string, id string) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

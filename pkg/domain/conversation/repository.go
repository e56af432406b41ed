package conversation

import (
	"context"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, history *History) error
	// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, sessionID string) (*History, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

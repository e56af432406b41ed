package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/conversation"
	domain "github.com/NeuralTrust/DoctourGate/pkg/domain/errors"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache"
	"github.com/go-redis/redis/v8"
)

const defaultSessionTTL = time.Hour

type SessionRepository struct {
	cache cache.Client
	ttl   time.Duration
}

// NewSessionRepository stores histories as JSON under SessionKeyPattern; every
// Save refreshes the key's expiry.
func NewSessionRepository(c cache.Client, ttl time.Duration) conversation.Repository {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(ctx context.Context, history *conversation.History) error {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.cache.Set(ctx, sessionKey(history.SessionID), string(historyJSON), r.ttl); err != nil {
		return fmt.Errorf("failed to save session %s: %w", history.SessionID, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*conversation.History, error) {
	historyJSON, err := r.cache.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	var h conversation.History
	if err := json.Unmarshal([]byte(historyJSON), &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}
	return &h, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.cache.Delete(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

func (r *SessionRepository) List(ctx context.Context) ([]string, error) {
	keys, err := r.cache.Scan(ctx, cache.SessionKeyScan)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(cache.SessionKeyScan, "*")
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf(cache.SessionKeyPattern, sessionID)
}

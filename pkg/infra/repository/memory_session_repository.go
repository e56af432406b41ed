package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/conversation"
	domain "github.com/NeuralTrust/DoctourGate/pkg/domain/errors"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache"
)

// MemorySessionRepository keeps serialized histories in a TTLMap, so callers
// never share a *History with the store.
type MemorySessionRepository struct {
	sessions *cache.TTLMap[[]byte]
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemorySessionRepository{
		sessions: cache.NewTTLMap[[]byte](ttl),
	}
}

func (r *MemorySessionRepository) Save(_ context.Context, history *conversation.History) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	r.sessions.Set(history.SessionID, data)
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, sessionID string) (*conversation.History, error) {
	data, ok := r.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	var h conversation.History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}
	return &h, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.sessions.Delete(sessionID)
	return nil
}

func (r *MemorySessionRepository) List(_ context.Context) ([]string, error) {
	return r.sessions.Keys(), nil
}

// Sweep drops expired sessions; the server calls it on a ticker.
func (r *MemorySessionRepository) Sweep() int {
	return r.sessions.Sweep()
}

package conversation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxTurns         = 50
	DefaultMaxContextTokens = 4000

	// charsPerToken approximates tokens from characters for context budgeting.
	charsPerToken = 4

	sessionIDPrefix = "session_"
)

// History is the ordered record of one consultation session. It is not safe
// for concurrent mutation; repositories hand out independent copies.
type History struct {
	SessionID        string                 `json:"session_id"`
	MaxTurns         int                    `json:"max_turns"`
	MaxContextTokens int                    `json:"max_context_length"`
	Turns            []Turn                 `json:"turns"`
	CreatedAt        time.Time              `json:"created_at"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type Summary struct {
	SessionID       string                 `json:"session_id"`
	CreatedAt       time.Time              `json:"created_at"`
	TurnCount       int                    `json:"turn_count"`
	DurationMinutes float64                `json:"duration_minutes"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// NewHistory starts a session. An empty sessionID gets a generated one and
// non-positive limits fall back to the defaults.
func NewHistory(sessionID string, maxTurns, maxContextTokens int) *History {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if maxContextTokens <= 0 {
		maxContextTokens = DefaultMaxContextTokens
	}
	return &History{
		SessionID:        sessionID,
		MaxTurns:         maxTurns,
		MaxContextTokens: maxContextTokens,
		Turns:            []Turn{},
		CreatedAt:        time.Now(),
		Metadata:         map[string]interface{}{},
	}
}

// NewSessionID returns "session_" followed by 16 hex characters.
func NewSessionID() string {
	return sessionIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// AddTurn appends a turn and drops the oldest ones beyond MaxTurns.
func (h *History) AddTurn(role Role, content string, metadata map[string]interface{}) Turn {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	turn := Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	h.Turns = append(h.Turns, turn)
	if over := len(h.Turns) - h.MaxTurns; h.MaxTurns > 0 && over > 0 {
		h.Turns = append([]Turn(nil), h.Turns[over:]...)
	}
	return turn
}

func (h *History) RecentTurns(n int) []Turn {
	if n <= 0 || len(h.Turns) == 0 {
		return []Turn{}
	}
	if n > len(h.Turns) {
		n = len(h.Turns)
	}
	out := make([]Turn, n)
	copy(out, h.Turns[len(h.Turns)-n:])
	return out
}

// ContextMessages returns the newest turns whose combined content fits in
// maxTokens*4 characters, oldest first. maxTokens <= 0 uses MaxContextTokens.
func (h *History) ContextMessages(maxTokens int) []Message {
	if maxTokens <= 0 {
		maxTokens = h.MaxContextTokens
	}
	budget := maxTokens * charsPerToken

	start := len(h.Turns)
	total := 0
	for i := len(h.Turns) - 1; i >= 0; i-- {
		n := len(h.Turns[i].Content)
		if total+n > budget {
			break
		}
		total += n
		start = i
	}

	messages := make([]Message, 0, len(h.Turns)-start)
	for _, t := range h.Turns[start:] {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}
	return messages
}

func (h *History) Clear() {
	h.Turns = []Turn{}
}

func (h *History) Summary() Summary {
	return Summary{
		SessionID:       h.SessionID,
		CreatedAt:       h.CreatedAt,
		TurnCount:       len(h.Turns),
		DurationMinutes: time.Since(h.CreatedAt).Minutes(),
		Metadata:        h.Metadata,
	}
}

package event

import "time"

// RuleSetReloadEvent asks every instance to reload its safety rule file.
// Origin identifies the publishing instance, which has already reloaded.
type RuleSetReloadEvent struct {
	Path        string    `json:"path,omitempty"`
	Origin      string    `json:"origin"`
	RequestedAt time.Time `json:"requested_at"`
}

func (e RuleSetReloadEvent) Type() string {
	return RuleSetReloadEventType
}

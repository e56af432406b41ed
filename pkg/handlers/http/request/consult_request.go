package request

import (
	"errors"
	"strings"
)

const maxQueryLength = 8000

type ConsultRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"query"`
}

func (r *ConsultRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query is required")
	}
	if len(r.Query) > maxQueryLength {
		return errors.New("query is too long")
	}
	if r.SessionID != "" && !strings.HasPrefix(r.SessionID, "session_") {
		return errors.New("session_id must start with session_")
	}
	return nil
}

package websocket

import (
	"errors"
	"strings"
)

type MessageType string

const (
	MessageTypeConsult    MessageType = "consult"
	MessageTypeEndSession MessageType = "end_session"
	MessageTypeReady      MessageType = "ready"
	MessageTypeResult     MessageType = "result"
	MessageTypeError      MessageType = "error"
)

// Message is a client frame. A missing type is treated as a consultation.
type Message struct {
	Type      MessageType `json:"type,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Query     string      `json:"query,omitempty"`
}

func (m *Message) Normalize() error {
	if m.Type == "" {
		m.Type = MessageTypeConsult
	}
	switch m.Type {
	case MessageTypeConsult:
		if strings.TrimSpace(m.Query) == "" {
			return errors.New("query is required")
		}
	case MessageTypeEndSession:
		if m.SessionID == "" {
			return errors.New("session_id is required")
		}
	default:
		return errors.New("unsupported message type: " + string(m.Type))
	}
	return nil
}

// ResponseMessage is a server frame. Payload carries the consultation result
// for result frames.
type ResponseMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Error     string      `json:"error,omitempty"`
}

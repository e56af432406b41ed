package response

import (
	"github.com/NeuralTrust/DoctourGate/pkg/domain/conversation"
)

type SessionOutput struct {
	Summary conversation.Summary `json:"summary"`
	Turns   []conversation.Turn  `json:"turns"`
}

func NewSessionOutput(h *conversation.History) SessionOutput {
	return SessionOutput{
		Summary: h.Summary(),
		Turns:   h.Turns,
	}
}

package response

import (
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
)

type RuleSetOutput struct {
	safety.RuleSetSummary
	FailMode string `json:"fail_mode"`
}

type DetectionOutput struct {
	Detector string   `json:"detector"`
	Clean    bool     `json:"clean"`
	Matches  []string `json:"matches"`
}

type ReloadOutput struct {
	Message string        `json:"message"`
	RuleSet RuleSetOutput `json:"rule_set"`
}

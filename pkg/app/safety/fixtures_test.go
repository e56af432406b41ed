package safety

import (
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
)

func medievalRuleSet() *safety.RuleSet {
	return safety.NewRuleSet("testdata/blocklist.json",
		[]safety.RuleEntry{
			{Term: "arsenic", Status: safety.StatusBlocked, Note: "poison"},
			{Term: "Mercury", Status: safety.StatusBlocked},
			{Term: "foxglove", Status: safety.StatusWarning, Note: "affects the heart"},
			{Term: "lead", Status: safety.StatusBlocked},
			{Term: "willow bark", Status: safety.StatusCaution},
		},
		[]safety.RuleEntry{
			{Term: "bloodletting", Status: safety.StatusBlocked},
			{Term: "fasting", Status: safety.StatusCaution, Note: "not for the frail"},
		},
		[]string{"crushing chest pain", "cannot breathe", "seizure"},
	)
}

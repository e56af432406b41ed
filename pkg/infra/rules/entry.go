package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"github.com/mitchellh/mapstructure"
)

var (
	errEmptyTerm     = errors.New("term is empty")
	errMissingStatus = errors.New("status is missing")
)

type entryFields struct {
	Status string `mapstructure:"status"`
	Note   string `mapstructure:"note"`
}

func toRuleEntry(raw rawEntry) (safety.RuleEntry, error) {
	if strings.TrimSpace(raw.term) == "" {
		return safety.RuleEntry{}, errEmptyTerm
	}
	settings, ok := raw.value.(map[string]interface{})
	if !ok {
		return safety.RuleEntry{}, fmt.Errorf("entry must be an object, got %T", raw.value)
	}
	if _, ok := settings["status"]; !ok {
		return safety.RuleEntry{}, errMissingStatus
	}

	var fields entryFields
	if err := mapstructure.Decode(settings, &fields); err != nil {
		return safety.RuleEntry{}, fmt.Errorf("failed to decode entry: %w", err)
	}
	status, err := safety.ParseStatus(fields.Status)
	if err != nil {
		return safety.RuleEntry{}, err
	}

	return safety.RuleEntry{
		Term:   raw.term,
		Status: status,
		Note:   fields.Note,
	}, nil
}

func toSymptom(raw interface{}) (string, error) {
	symptom, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("symptom must be a string, got %T", raw)
	}
	if strings.TrimSpace(symptom) == "" {
		return "", errEmptyTerm
	}
	return symptom, nil
}

package safety

import (
	"fmt"
	"strings"
)

// Status is the disposition a rule file assigns to a term.
type Status string

const (
	StatusBlocked Status = "blocked"
	StatusCaution Status = "caution"
	StatusWarning Status = "warning"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusBlocked, StatusCaution, StatusWarning:
		return s, nil
	default:
		return "", fmt.Errorf("invalid status: %q", raw)
	}
}

// Severity maps a status onto the verdict scale.
func (s Status) Severity() SeverityLevel {
	switch s {
	case StatusBlocked:
		return Blocked
	case StatusWarning:
		return Warning
	case StatusCaution:
		return Caution
	default:
		return Safe
	}
}

type RuleEntry struct {
	Term   string `json:"term"`
	Status Status `json:"status"`
	Note   string `json:"note,omitempty"`
}

// Category identifies one of the rule set's term collections.
type Category string

const (
	CategoryToxicSubstances    Category = "toxic_substances"
	CategoryDangerousPractices Category = "dangerous_practices"
	CategoryEmergencySymptoms  Category = "emergency_symptoms"
)

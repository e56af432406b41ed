package rules

import "fmt"

// document is the format-independent shape of a rule file before entries are
// validated. Slices keep the order of the source file.
type document struct {
	toxicSubstances    []rawEntry
	dangerousPractices []rawEntry
	emergencySymptoms  []interface{}
}

type rawEntry struct {
	term  string
	value interface{}
}

const (
	fieldToxicSubstances    = "toxic_substances"
	fieldDangerousPractices = "dangerous_practices"
	fieldEmergencySymptoms  = "emergency_symptoms"
)

func decode(f format, data []byte) (*document, error) {
	switch f {
	case formatJSON:
		return decodeJSON(data)
	case formatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported rule file format: %s", f)
	}
}

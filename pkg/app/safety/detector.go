package safety

import (
	"strings"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
)

const (
	SubstanceDetectorName = "substances"
	PracticeDetectorName  = "practices"
	EmergencyDetectorName = "emergencies"
)

// Detector is a pure predicate over text and a rule set. Implementations hold
// no mutable state and may be called from many goroutines at once.
type Detector interface {
	Name() string
	Detect(text string, rs *safety.RuleSet) safety.Detection
}

type blockedTermDetector struct {
	name     string
	category safety.Category
}

func NewSubstanceDetector() Detector {
	return &blockedTermDetector{name: SubstanceDetectorName, category: safety.CategoryToxicSubstances}
}

func NewPracticeDetector() Detector {
	return &blockedTermDetector{name: PracticeDetectorName, category: safety.CategoryDangerousPractices}
}

func (d *blockedTermDetector) Name() string {
	return d.name
}

func (d *blockedTermDetector) Detect(text string, rs *safety.RuleSet) safety.Detection {
	lowered := strings.ToLower(text)
	matches := []string{}
	rs.RangeEntries(d.category, func(e safety.RuleEntry) bool {
		if e.Status == safety.StatusBlocked && strings.Contains(lowered, strings.ToLower(e.Term)) {
			matches = append(matches, e.Term)
		}
		return true
	})
	return safety.Detection{Clean: len(matches) == 0, Matches: matches}
}

type emergencyDetector struct{}

func NewEmergencyDetector() Detector {
	return emergencyDetector{}
}

func (emergencyDetector) Name() string {
	return EmergencyDetectorName
}

func (emergencyDetector) Detect(text string, rs *safety.RuleSet) safety.Detection {
	lowered := strings.ToLower(text)
	matches := []string{}
	rs.RangeSymptoms(func(symptom string) bool {
		if strings.Contains(lowered, strings.ToLower(symptom)) {
			matches = append(matches, symptom)
		}
		return true
	})
	return safety.Detection{Clean: len(matches) == 0, Matches: matches}
}

// Advisories returns the caution and warning entries of both term categories
// that occur in text, substances first.
func Advisories(text string, rs *safety.RuleSet) []safety.RuleEntry {
	lowered := strings.ToLower(text)
	var found []safety.RuleEntry
	collect := func(e safety.RuleEntry) bool {
		if e.Status != safety.StatusBlocked && strings.Contains(lowered, strings.ToLower(e.Term)) {
			found = append(found, e)
		}
		return true
	}
	rs.RangeEntries(safety.CategoryToxicSubstances, collect)
	rs.RangeEntries(safety.CategoryDangerousPractices, collect)
	return found
}

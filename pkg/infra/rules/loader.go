package rules

import (
	"fmt"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Loader --dir=. --output=./mocks --filename=loader_mock.go --case=underscore --with-expecter
type Loader interface {
	// Load never fails: a missing or unparsable file yields an empty,
	// not-loaded RuleSet after logging the cause.
	Load(path string) *safety.RuleSet
	// LoadStrict reports read and parse failures to the caller. Invalid
	// individual entries are still skipped.
	LoadStrict(path string) (*safety.RuleSet, error)
}

type loader struct {
	logger *logrus.Logger
}

func NewLoader(logger *logrus.Logger) Loader {
	return &loader{
		logger: logger,
	}
}

func (l *loader) Load(path string) *safety.RuleSet {
	rs, err := l.LoadStrict(path)
	if err != nil {
		l.logger.WithError(err).WithField("path", path).
			Error("safety rule set could not be loaded, continuing with an empty rule set")
		return safety.EmptyRuleSet(path)
	}
	return rs
}

func (l *loader) LoadStrict(path string) (*safety.RuleSet, error) {
	data, f, err := readRuleFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	doc, err := decode(f, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}

	substances := l.buildEntries(path, safety.CategoryToxicSubstances, doc.toxicSubstances)
	practices := l.buildEntries(path, safety.CategoryDangerousPractices, doc.dangerousPractices)
	symptoms := l.buildSymptoms(path, doc.emergencySymptoms)

	rs := safety.NewRuleSet(path, substances, practices, symptoms)
	summary := rs.Summary()
	l.logger.WithFields(logrus.Fields{
		"path":                path,
		"format":              f,
		"toxic_substances":    summary.ToxicSubstances,
		"dangerous_practices": summary.DangerousPractices,
		"emergency_symptoms":  summary.EmergencySymptoms,
	}).Info("safety rule set loaded")
	return rs, nil
}

func (l *loader) buildEntries(path string, category safety.Category, raws []rawEntry) []safety.RuleEntry {
	entries := make([]safety.RuleEntry, 0, len(raws))
	for _, raw := range raws {
		entry, err := toRuleEntry(raw)
		if err != nil {
			l.logger.WithError(err).WithFields(logrus.Fields{
				"path":     path,
				"category": category,
				"term":     raw.term,
			}).Warn("skipping malformed rule entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (l *loader) buildSymptoms(path string, raws []interface{}) []string {
	symptoms := make([]string, 0, len(raws))
	for i, raw := range raws {
		symptom, err := toSymptom(raw)
		if err != nil {
			l.logger.WithError(err).WithFields(logrus.Fields{
				"path":     path,
				"category": safety.CategoryEmergencySymptoms,
				"index":    i,
			}).Warn("skipping malformed emergency symptom")
			continue
		}
		symptoms = append(symptoms, symptom)
	}
	return symptoms
}

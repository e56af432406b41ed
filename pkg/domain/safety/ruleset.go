package safety

import (
	"strings"
	"time"
)

// RuleSet is an immutable snapshot of the loaded rules. Fields are only
// reachable through accessors that copy or iterate, so a published RuleSet
// can be shared between goroutines without locking.
type RuleSet struct {
	toxicSubstances    []RuleEntry
	dangerousPractices []RuleEntry
	emergencySymptoms  []string
	source             string
	loadedAt           time.Time
	loaded             bool
}

// NewRuleSet builds a RuleSet from already validated entries. Order is kept;
// a repeated term replaces the earlier entry in its original position and a
// repeated symptom is dropped.
func NewRuleSet(source string, substances, practices []RuleEntry, symptoms []string) *RuleSet {
	return &RuleSet{
		toxicSubstances:    dedupeEntries(substances),
		dangerousPractices: dedupeEntries(practices),
		emergencySymptoms:  dedupeStrings(symptoms),
		source:             source,
		loadedAt:           time.Now().UTC(),
		loaded:             true,
	}
}

// EmptyRuleSet is the degraded rule set used when no rule file could be read.
func EmptyRuleSet(source string) *RuleSet {
	return &RuleSet{
		source:   source,
		loadedAt: time.Now().UTC(),
	}
}

// Loaded is false only for the degraded rule set returned on load failure.
func (r *RuleSet) Loaded() bool {
	return r != nil && r.loaded
}

func (r *RuleSet) Source() string {
	if r == nil {
		return ""
	}
	return r.source
}

func (r *RuleSet) LoadedAt() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.loadedAt
}

func (r *RuleSet) IsEmpty() bool {
	return r == nil ||
		len(r.toxicSubstances) == 0 && len(r.dangerousPractices) == 0 && len(r.emergencySymptoms) == 0
}

func (r *RuleSet) ToxicSubstances() []RuleEntry {
	if r == nil {
		return nil
	}
	return append([]RuleEntry(nil), r.toxicSubstances...)
}

func (r *RuleSet) DangerousPractices() []RuleEntry {
	if r == nil {
		return nil
	}
	return append([]RuleEntry(nil), r.dangerousPractices...)
}

func (r *RuleSet) EmergencySymptoms() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.emergencySymptoms...)
}

// RangeEntries calls fn for every entry of a term category in order until fn
// returns false. Emergency symptoms are not entries; see RangeSymptoms.
func (r *RuleSet) RangeEntries(category Category, fn func(RuleEntry) bool) {
	if r == nil {
		return
	}
	var entries []RuleEntry
	switch category {
	case CategoryToxicSubstances:
		entries = r.toxicSubstances
	case CategoryDangerousPractices:
		entries = r.dangerousPractices
	default:
		return
	}
	for _, e := range entries {
		if !fn(e) {
			return
		}
	}
}

func (r *RuleSet) RangeSymptoms(fn func(string) bool) {
	if r == nil {
		return
	}
	for _, s := range r.emergencySymptoms {
		if !fn(s) {
			return
		}
	}
}

type RuleSetSummary struct {
	Source             string    `json:"source"`
	Loaded             bool      `json:"loaded"`
	LoadedAt           time.Time `json:"loaded_at"`
	ToxicSubstances    int       `json:"toxic_substances"`
	DangerousPractices int       `json:"dangerous_practices"`
	EmergencySymptoms  int       `json:"emergency_symptoms"`
	BlockedTerms       int       `json:"blocked_terms"`
}

func (r *RuleSet) Summary() RuleSetSummary {
	if r == nil {
		return RuleSetSummary{}
	}
	blocked := 0
	for _, e := range r.toxicSubstances {
		if e.Status == StatusBlocked {
			blocked++
		}
	}
	for _, e := range r.dangerousPractices {
		if e.Status == StatusBlocked {
			blocked++
		}
	}
	return RuleSetSummary{
		Source:             r.source,
		Loaded:             r.loaded,
		LoadedAt:           r.loadedAt,
		ToxicSubstances:    len(r.toxicSubstances),
		DangerousPractices: len(r.dangerousPractices),
		EmergencySymptoms:  len(r.emergencySymptoms),
		BlockedTerms:       blocked,
	}
}

func dedupeEntries(entries []RuleEntry) []RuleEntry {
	out := make([]RuleEntry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		key := strings.ToLower(e.Term)
		if i, ok := index[key]; ok {
			out[i] = e
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}

func dedupeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

package safety

import (
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"golang.org/x/sync/errgroup"
)

// detections holds the raw detector results for one validation call.
type detections struct {
	emergency  safety.Detection
	substances safety.Detection
	practices  safety.Detection
	advisories []safety.RuleEntry
}

type Aggregator struct {
	substances  Detector
	practices   Detector
	emergencies Detector
	parallel    bool
	advisories  bool
}

func NewAggregator(parallel, advisories bool) *Aggregator {
	return &Aggregator{
		substances:  NewSubstanceDetector(),
		practices:   NewPracticeDetector(),
		emergencies: NewEmergencyDetector(),
		parallel:    parallel,
		advisories:  advisories,
	}
}

// Aggregate reduces the detector results to one verdict. Precedence:
// an emergency in the user input, then blocked terms in the candidate
// response, then Safe. The response is never scanned for emergencies and the
// input is never scanned for blocked terms.
func (a *Aggregator) Aggregate(userInput, candidateResponse string, rs *safety.RuleSet) safety.Verdict {
	d := a.detect(userInput, candidateResponse, rs)

	if !d.emergency.Clean {
		return safety.Verdict{
			Level:        safety.Emergency,
			Message:      EmergencyMessage,
			MatchedTerms: d.emergency.Matches,
			Layer:        safety.LayerEmergency,
		}
	}

	if !d.substances.Clean || !d.practices.Clean {
		matched := make([]string, 0, len(d.substances.Matches)+len(d.practices.Matches))
		matched = append(matched, d.substances.Matches...)
		matched = append(matched, d.practices.Matches...)
		return safety.Verdict{
			Level:        safety.Blocked,
			Message:      BlockedMessage,
			MatchedTerms: matched,
			Layer:        safety.LayerSubstanceOrPractice,
		}
	}

	if len(d.advisories) > 0 {
		return advisoryVerdict(d.advisories)
	}

	return safety.Verdict{
		Level:        safety.Safe,
		Message:      PassMessage,
		MatchedTerms: []string{},
		Layer:        safety.LayerNone,
		Warnings:     []string{InteractionDisclaimer},
	}
}

func (a *Aggregator) detect(userInput, candidateResponse string, rs *safety.RuleSet) detections {
	var d detections
	if !a.parallel {
		d.emergency = a.emergencies.Detect(userInput, rs)
		d.substances = a.substances.Detect(candidateResponse, rs)
		d.practices = a.practices.Detect(candidateResponse, rs)
		if a.advisories {
			d.advisories = Advisories(candidateResponse, rs)
		}
		return d
	}

	var g errgroup.Group
	g.Go(func() error {
		d.emergency = a.emergencies.Detect(userInput, rs)
		return nil
	})
	g.Go(func() error {
		d.substances = a.substances.Detect(candidateResponse, rs)
		return nil
	})
	g.Go(func() error {
		d.practices = a.practices.Detect(candidateResponse, rs)
		return nil
	})
	if a.advisories {
		g.Go(func() error {
			d.advisories = Advisories(candidateResponse, rs)
			return nil
		})
	}
	_ = g.Wait()
	return d
}

// advisoryVerdict keeps the response but raises the level to the highest
// matched status and carries each entry note as a warning.
func advisoryVerdict(entries []safety.RuleEntry) safety.Verdict {
	level := safety.Safe
	matched := make([]string, 0, len(entries))
	warnings := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		level = safety.MaxSeverity(level, e.Status.Severity())
		matched = append(matched, e.Term)
		if e.Note != "" {
			warnings = append(warnings, e.Term+": "+e.Note)
		}
	}
	warnings = append(warnings, InteractionDisclaimer)
	return safety.Verdict{
		Level:        level,
		Message:      AdvisoryMessage,
		MatchedTerms: matched,
		Layer:        safety.LayerAdvisory,
		Warnings:     warnings,
	}
}

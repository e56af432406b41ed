package safety

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/prometheus"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/rules"
	"github.com/sirupsen/logrus"
)

// FailMode decides what Validate does while no rule file has been loaded.
type FailMode string

const (
	// FailOpen validates against the empty rule set, so nothing is blocked.
	FailOpen FailMode = "open"
	// FailClosed withholds every response until a rule set loads.
	FailClosed FailMode = "closed"
)

func ParseFailMode(raw string) (FailMode, error) {
	switch m := FailMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "", FailOpen:
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	default:
		return "", fmt.Errorf("invalid fail mode: %q", raw)
	}
}

// Reload triggers, used as metric labels.
const (
	TriggerStartup = "startup"
	TriggerAdmin   = "admin"
	TriggerEvent   = "event"
	TriggerWatcher = "watcher"
)

type Options struct {
	FailMode          FailMode
	ParallelDetectors bool
	Advisories        bool
}

//go:generate mockery --name=Validator --dir=. --output=./mocks --filename=validator_mock.go --case=underscore --with-expecter
type Validator interface {
	Validate(ctx context.Context, userInput, candidateResponse string) safety.Verdict
}

// Pipeline validates text pairs against the currently published rule set.
// The rule set is swapped atomically as a whole; a Validate call works on the
// snapshot it read at its start.
type Pipeline struct {
	logger     *logrus.Logger
	loader     rules.Loader
	aggregator *Aggregator
	failMode   FailMode
	ruleSet    atomic.Pointer[safety.RuleSet]
}

func NewPipeline(logger *logrus.Logger, loader rules.Loader, rs *safety.RuleSet, opts Options) *Pipeline {
	if opts.FailMode == "" {
		opts.FailMode = FailOpen
	}
	p := &Pipeline{
		logger:     logger,
		loader:     loader,
		aggregator: NewAggregator(opts.ParallelDetectors, opts.Advisories),
		failMode:   opts.FailMode,
	}
	if rs == nil {
		rs = safety.EmptyRuleSet("")
	}
	p.Swap(rs)
	return p
}

func (p *Pipeline) Validate(ctx context.Context, userInput, candidateResponse string) safety.Verdict {
	start := time.Now()
	rs := p.ruleSet.Load()

	var verdict safety.Verdict
	if p.failMode == FailClosed && !rs.Loaded() {
		verdict = safety.Verdict{
			Level:        safety.Blocked,
			Message:      RulesUnavailableMessage,
			MatchedTerms: []string{},
			Layer:        safety.LayerRulesUnavailable,
		}
	} else {
		verdict = p.aggregator.Aggregate(userInput, candidateResponse, rs)
	}

	p.observe(ctx, verdict, time.Since(start))
	return verdict
}

func (p *Pipeline) Substances() Detector {
	return p.aggregator.substances
}

func (p *Pipeline) Practices() Detector {
	return p.aggregator.practices
}

func (p *Pipeline) Emergencies() Detector {
	return p.aggregator.emergencies
}

// Detector looks a detector up by name for introspection endpoints.
func (p *Pipeline) Detector(name string) (Detector, bool) {
	switch name {
	case SubstanceDetectorName:
		return p.Substances(), true
	case PracticeDetectorName:
		return p.Practices(), true
	case EmergencyDetectorName:
		return p.Emergencies(), true
	default:
		return nil, false
	}
}

func (p *Pipeline) RuleSet() *safety.RuleSet {
	return p.ruleSet.Load()
}

func (p *Pipeline) FailMode() FailMode {
	return p.failMode
}

// Swap publishes rs for all subsequent Validate calls.
func (p *Pipeline) Swap(rs *safety.RuleSet) {
	p.ruleSet.Store(rs)
	summary := rs.Summary()
	prometheus.RuleSetTerms.WithLabelValues(string(safety.CategoryToxicSubstances)).Set(float64(summary.ToxicSubstances))
	prometheus.RuleSetTerms.WithLabelValues(string(safety.CategoryDangerousPractices)).Set(float64(summary.DangerousPractices))
	prometheus.RuleSetTerms.WithLabelValues(string(safety.CategoryEmergencySymptoms)).Set(float64(summary.EmergencySymptoms))
}

// Reload strictly loads path (the current source when empty) and publishes
// the result. On failure the active rule set is left untouched.
func (p *Pipeline) Reload(ctx context.Context, path, trigger string) (*safety.RuleSet, error) {
	if path == "" {
		path = p.RuleSet().Source()
	}
	if path == "" {
		prometheus.RuleReloadsTotal.WithLabelValues(trigger, "failure").Inc()
		return nil, fmt.Errorf("no rule file path to reload from")
	}

	rs, err := p.loader.LoadStrict(path)
	if err != nil {
		prometheus.RuleReloadsTotal.WithLabelValues(trigger, "failure").Inc()
		p.logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
			"path":    path,
			"trigger": trigger,
		}).Error("safety rule reload failed, keeping the active rule set")
		return nil, err
	}

	p.Swap(rs)
	prometheus.RuleReloadsTotal.WithLabelValues(trigger, "success").Inc()
	p.logger.WithContext(ctx).WithFields(logrus.Fields{
		"path":    path,
		"trigger": trigger,
	}).Info("safety rule set reloaded")
	return rs, nil
}

func (p *Pipeline) observe(ctx context.Context, verdict safety.Verdict, elapsed time.Duration) {
	prometheus.VerdictsTotal.WithLabelValues(verdict.Level.String(), string(verdict.Layer)).Inc()
	metricsCfg := prometheus.CurrentConfig()
	if metricsCfg.EnableLatency {
		prometheus.ValidationLatency.Observe(float64(elapsed.Microseconds()))
	}
	if metricsCfg.EnableTermLabels {
		for _, term := range verdict.MatchedTerms {
			prometheus.MatchedTermsTotal.WithLabelValues(string(verdict.Layer), term).Inc()
		}
	}

	fields := logrus.Fields{
		"level": verdict.Level.String(),
		"layer": verdict.Layer,
		"terms": verdict.MatchedTerms,
	}
	switch verdict.Level {
	case safety.Emergency:
		fields["severity"] = "critical"
		p.logger.WithContext(ctx).WithFields(fields).Error("emergency symptoms detected in user input")
	case safety.Blocked:
		if verdict.Layer == safety.LayerRulesUnavailable {
			p.logger.WithContext(ctx).WithFields(fields).Warn("response withheld, no safety rules loaded")
			return
		}
		p.logger.WithContext(ctx).WithFields(fields).Warn("blocked content detected in candidate response")
	case safety.Caution, safety.Warning:
		p.logger.WithContext(ctx).WithFields(fields).Info("advisory terms detected in candidate response")
	}
}

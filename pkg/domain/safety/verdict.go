package safety

// Layer names the detector group that decided a verdict.
type Layer string

const (
	LayerNone                Layer = ""
	LayerEmergency           Layer = "emergency"
	LayerSubstanceOrPractice Layer = "substance_or_practice"
	LayerAdvisory            Layer = "advisory"
	LayerRulesUnavailable    Layer = "rules_unavailable"
)

// Verdict is the single outcome of validating a (user input, candidate
// response) pair. Values are built once by the aggregator and passed by value.
type Verdict struct {
	Level        SeverityLevel `json:"level"`
	Message      string        `json:"message"`
	MatchedTerms []string      `json:"matched_terms"`
	Layer        Layer         `json:"layer,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Passed reports whether the candidate response may be surfaced.
func (v Verdict) Passed() bool {
	return !v.Level.Disqualifying()
}

// Detection is the raw output of a single detector.
type Detection struct {
	Clean   bool     `json:"clean"`
	Matches []string `json:"matches"`
}

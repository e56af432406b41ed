package safety

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SeverityLevel is totally ordered: a higher value always wins when
// several conditions are present.
type SeverityLevel int

const (
	Safe SeverityLevel = iota
	Caution
	Warning
	Blocked
	Emergency
)

var severityNames = map[SeverityLevel]string{
	Safe:      "safe",
	Caution:   "caution",
	Warning:   "warning",
	Blocked:   "blocked",
	Emergency: "emergency",
}

func (l SeverityLevel) String() string {
	if name, ok := severityNames[l]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(l))
}

// Disqualifying reports whether a response carrying this level must not be
// surfaced to the end user.
func (l SeverityLevel) Disqualifying() bool {
	return l >= Blocked
}

func (l SeverityLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *SeverityLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("severity level must be a string: %w", err)
	}
	parsed, err := ParseSeverityLevel(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func ParseSeverityLevel(name string) (SeverityLevel, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for level, levelName := range severityNames {
		if levelName == needle {
			return level, nil
		}
	}
	return Safe, fmt.Errorf("unknown severity level: %q", name)
}

// MaxSeverity returns the highest of the given levels, Safe when empty.
func MaxSeverity(levels ...SeverityLevel) SeverityLevel {
	highest := Safe
	for _, l := range levels {
		if l > highest {
			highest = l
		}
	}
	return highest
}

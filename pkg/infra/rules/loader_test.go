package rules

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blocklistJSON = `{
	"version": "2024-11",
	"toxic_substances": {
		"mercury": {"status": "blocked", "note": "quicksilver"},
		"arsenic": {"status": "blocked"},
		"foxglove": {"status": "warning", "note": "cardiac glycosides"},
		"lead": {"status": "blocked"}
	},
	"dangerous_practices": {
		"bloodletting": {"status": "blocked"},
		"fasting": {"status": "caution"}
	},
	"emergency_symptoms": ["chest pain", "cannot breathe", "seizure"]
}`

const blocklistYAML = `
toxic_substances:
  mercury:
    status: blocked
    note: quicksilver
  arsenic:
    status: blocked
  foxglove:
    status: warning
dangerous_practices:
  bloodletting:
    status: blocked
emergency_symptoms:
  - chest pain
  - cannot breathe
maintainer: apothecary
`

func writeRuleFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func terms(entries []safety.RuleEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Term)
	}
	return out
}

func TestLoader_LoadJSONPreservesOrder(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := writeRuleFile(t, "safety_blocklist.json", []byte(blocklistJSON))

	rs := NewLoader(logger).Load(path)

	require.True(t, rs.Loaded())
	assert.Equal(t, []string{"mercury", "arsenic", "foxglove", "lead"}, terms(rs.ToxicSubstances()))
	assert.Equal(t, []string{"bloodletting", "fasting"}, terms(rs.DangerousPractices()))
	assert.Equal(t, []string{"chest pain", "cannot breathe", "seizure"}, rs.EmergencySymptoms())

	first := rs.ToxicSubstances()[0]
	assert.Equal(t, safety.StatusBlocked, first.Status)
	assert.Equal(t, "quicksilver", first.Note)
	assert.Equal(t, safety.StatusWarning, rs.ToxicSubstances()[2].Status)
	assert.Equal(t, path, rs.Source())
}

func TestLoader_LoadYAMLPreservesOrder(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := writeRuleFile(t, "rules.yaml", []byte(blocklistYAML))

	rs := NewLoader(logger).Load(path)

	require.True(t, rs.Loaded())
	assert.Equal(t, []string{"mercury", "arsenic", "foxglove"}, terms(rs.ToxicSubstances()))
	assert.Equal(t, []string{"bloodletting"}, terms(rs.DangerousPractices()))
	assert.Equal(t, []string{"chest pain", "cannot breathe"}, rs.EmergencySymptoms())
}

func TestLoader_MissingFileFailsOpen(t *testing.T) {
	logger, hook := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	rs := NewLoader(logger).Load(path)

	assert.False(t, rs.Loaded())
	assert.True(t, rs.IsEmpty())
	assert.Empty(t, rs.ToxicSubstances())
	assert.Empty(t, rs.DangerousPractices())
	assert.Empty(t, rs.EmergencySymptoms())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLoader_LoadStrictReportsErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	l := NewLoader(logger)

	_, err := l.LoadStrict(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "truncated json", file: "rules.json", data: `{"toxic_substances": {`},
		{name: "empty json", file: "rules.json", data: ``},
		{name: "top level array", file: "rules.json", data: `["arsenic"]`},
		{name: "substances as array", file: "rules.json", data: `{"toxic_substances": ["arsenic"]}`},
		{name: "symptoms as object", file: "rules.json", data: `{"emergency_symptoms": {"a": 1}}`},
		{name: "broken yaml", file: "rules.yaml", data: "toxic_substances: [unclosed"},
		{name: "yaml top level sequence", file: "rules.yml", data: "- arsenic\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRuleFile(t, tt.file, []byte(tt.data))
			rs, err := l.LoadStrict(path)
			assert.Error(t, err)
			assert.Nil(t, rs)

			degraded := l.Load(path)
			assert.False(t, degraded.Loaded())
			assert.True(t, degraded.IsEmpty())
		})
	}
}

func TestLoader_SkipsMalformedEntries(t *testing.T) {
	logger, hook := test.NewNullLogger()
	path := writeRuleFile(t, "rules.json", []byte(`{
		"toxic_substances": {
			"arsenic": {"status": "blocked"},
			"hemlock": {"note": "no status"},
			"wolfsbane": "blocked",
			"": {"status": "blocked"},
			"mandrake": {"status": "forbidden"},
			"cinnabar": {"status": 3},
			"mercury": {"status": "blocked"}
		},
		"emergency_symptoms": ["stroke", 42, "", "unconscious"]
	}`))

	rs := NewLoader(logger).Load(path)

	require.True(t, rs.Loaded())
	assert.Equal(t, []string{"arsenic", "mercury"}, terms(rs.ToxicSubstances()))
	assert.Empty(t, rs.DangerousPractices())
	assert.Equal(t, []string{"stroke", "unconscious"}, rs.EmergencySymptoms())

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 7, warnings)
}

func TestLoader_MissingTopLevelFieldsDefaultEmpty(t *testing.T) {
	logger, _ := test.NewNullLogger()
	l := NewLoader(logger)

	for _, tt := range []struct{ file, data string }{
		{file: "rules.json", data: `{"emergency_symptoms": ["seizure"], "comment": "x"}`},
		{file: "rules.yaml", data: "emergency_symptoms:\n  - seizure\ntoxic_substances: ~\n"},
	} {
		rs := l.Load(writeRuleFile(t, tt.file, []byte(tt.data)))
		require.True(t, rs.Loaded(), tt.file)
		assert.Empty(t, rs.ToxicSubstances())
		assert.Empty(t, rs.DangerousPractices())
		assert.Equal(t, []string{"seizure"}, rs.EmergencySymptoms())
	}

	empty := l.Load(writeRuleFile(t, "empty.yaml", nil))
	assert.True(t, empty.Loaded())
	assert.True(t, empty.IsEmpty())
}

func TestLoader_CompressedFiles(t *testing.T) {
	logger, _ := test.NewNullLogger()
	l := NewLoader(logger)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(blocklistJSON))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	rs := l.Load(writeRuleFile(t, "safety_blocklist.json.gz", gz.Bytes()))
	require.True(t, rs.Loaded())
	assert.Equal(t, []string{"mercury", "arsenic", "foxglove", "lead"}, terms(rs.ToxicSubstances()))

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, err = bw.Write([]byte(blocklistYAML))
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	rs = l.Load(writeRuleFile(t, "rules.yaml.br", br.Bytes()))
	require.True(t, rs.Loaded())
	assert.Equal(t, []string{"chest pain", "cannot breathe"}, rs.EmergencySymptoms())

	corrupt := l.Load(writeRuleFile(t, "rules.json.gz", []byte("not gzip")))
	assert.False(t, corrupt.Loaded())
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, formatJSON, detectFormat("rules.json", nil))
	assert.Equal(t, formatYAML, detectFormat("rules.yml", nil))
	assert.Equal(t, formatJSON, detectFormat("rules", []byte("  {\"a\":1}")))
	assert.Equal(t, formatYAML, detectFormat("rules", []byte("a: 1")))
}

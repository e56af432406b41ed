package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// decodeYAML works on the node tree rather than a map so mapping order
// survives.
func decodeYAML(data []byte) (*document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	doc := &document{}
	if root.Kind == 0 || len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping")
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		var err error
		switch key.Value {
		case fieldToxicSubstances:
			doc.toxicSubstances, err = yamlEntries(fieldToxicSubstances, value)
		case fieldDangerousPractices:
			doc.dangerousPractices, err = yamlEntries(fieldDangerousPractices, value)
		case fieldEmergencySymptoms:
			doc.emergencySymptoms, err = yamlList(fieldEmergencySymptoms, value)
		}
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func yamlEntries(field string, node *yaml.Node) ([]rawEntry, error) {
	if isYAMLNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s must be a mapping", field)
	}
	entries := make([]rawEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var decoded interface{}
		if err := value.Decode(&decoded); err != nil {
			decoded = nil
		}
		entries = append(entries, rawEntry{term: key.Value, value: decoded})
	}
	return entries, nil
}

func yamlList(field string, node *yaml.Node) ([]interface{}, error) {
	if isYAMLNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s must be a sequence", field)
	}
	out := make([]interface{}, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
			out = append(out, nil)
			continue
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func isYAMLNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

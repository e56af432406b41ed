package rules

import (
	"fmt"

	"github.com/valyala/fastjson"
)

// decodeJSON walks the document with fastjson so that object keys are visited
// in source order, which encoding/json maps cannot preserve.
func decodeJSON(data []byte) (*document, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	obj, err := root.Object()
	if err != nil {
		return nil, fmt.Errorf("top level must be an object: %w", err)
	}

	doc := &document{}
	var fieldErr error
	obj.Visit(func(key []byte, v *fastjson.Value) {
		if fieldErr != nil {
			return
		}
		switch string(key) {
		case fieldToxicSubstances:
			doc.toxicSubstances, fieldErr = jsonEntries(fieldToxicSubstances, v)
		case fieldDangerousPractices:
			doc.dangerousPractices, fieldErr = jsonEntries(fieldDangerousPractices, v)
		case fieldEmergencySymptoms:
			doc.emergencySymptoms, fieldErr = jsonList(fieldEmergencySymptoms, v)
		}
	})
	if fieldErr != nil {
		return nil, fieldErr
	}
	return doc, nil
}

func jsonEntries(field string, v *fastjson.Value) ([]rawEntry, error) {
	if v.Type() == fastjson.TypeNull {
		return nil, nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%s must be an object: %w", field, err)
	}
	var entries []rawEntry
	obj.Visit(func(key []byte, ev *fastjson.Value) {
		entries = append(entries, rawEntry{term: string(key), value: jsonValue(ev)})
	})
	return entries, nil
}

func jsonList(field string, v *fastjson.Value) ([]interface{}, error) {
	if v.Type() == fastjson.TypeNull {
		return nil, nil
	}
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%s must be an array: %w", field, err)
	}
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, jsonValue(item))
	}
	return out, nil
}

func jsonValue(v *fastjson.Value) interface{} {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, _ := v.Object()
		m := make(map[string]interface{}, obj.Len())
		obj.Visit(func(key []byte, ev *fastjson.Value) {
			m[string(key)] = jsonValue(ev)
		})
		return m
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]interface{}, 0, len(items))
		for _, item := range items {
			out = append(out, jsonValue(item))
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

package gemini

import (
	"fmt"
	"sort"

	"github.com/google/generative-ai-go/genai"
)

// ToGenaiSchema converts the map-based JSON schema into Gemini's Schema type.
// Supported keywords: type, description, enum, properties, required, items.
// Anything else is dropped.
func ToGenaiSchema(m map[string]any) (*genai.Schema, error) {
	s := &genai.Schema{}

	typ, _ := m["type"].(string)
	switch typ {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "string":
		s.Type = genai.TypeString
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typ)
	}

	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := m["enum"].([]string); ok {
		s.Enum = append([]string(nil), enum...)
		// Gemini only accepts enum with the "enum" string format.
		s.Format = "enum"
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = append([]string(nil), req...)
	}

	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pm, ok := props[k].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("property %q: not an object", k)
			}
			ps, err := ToGenaiSchema(pm)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", k, err)
			}
			s.Properties[k] = ps
		}
	}

	if items, ok := m["items"].(map[string]any); ok {
		is, err := ToGenaiSchema(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		s.Items = is
	}
	return s, nil
}

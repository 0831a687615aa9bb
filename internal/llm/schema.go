package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/tkp/constants"
)

// SchemaName is the name the schema is registered under in response_format.
const SchemaName = "product_search_response"

// BuildQuoteJSONSchema returns the JSON-Schema the model must follow, as a
// generic map. We pass it to the model as a structured output constraint and
// also use it locally to validate in strict mode.
func BuildQuoteJSONSchema() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":      map[string]any{"type": "string", "description": "Полное название товара"},
			"article":   map[string]any{"type": "string", "description": "Артикул товара"},
			"count":     map[string]any{"type": "integer", "minimum": 1, "description": "Количество единиц товара"},
			"unit_cost": map[string]any{"type": "number", "minimum": 0, "description": "Цена за единицу товара в рублях (число)"},
		},
		"required":             []string{"name", "count", "unit_cost"},
		"additionalProperties": false,
	}

	props := map[string]any{
		"id":          map[string]any{"type": "integer", "description": "Уникальный ID запроса"},
		"complexity":  map[string]any{"type": "string", "enum": constants.ComplexityEnum(), "description": "Сложность запроса"},
		"query":       map[string]any{"type": "string", "description": "Исходный запрос пользователя"},
		"description": map[string]any{"type": "string", "description": "Краткое описание запроса"},
		"found_items": map[string]any{
			"type":        "array",
			"description": "Список найденных товаров",
			"items":       item,
		},
		"additional_notes": map[string]any{"type": "string", "description": "Дополнительные примечания или комментарии к заказу"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"id", "complexity", "query", "description", "found_items"},
	}
}

// ResponseFormat wraps the schema in the OpenAI-compatible response_format
// envelope with strict mode on.
func ResponseFormat(schema map[string]any) map[string]any {
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   SchemaName,
			"strict": true,
			"schema": schema,
		},
	}
}

// CompileSchema compiles schemaMap for repeated validation.
func CompileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := CompileSchema(schemaMap)
	if err != nil {
		return err
	}
	return ValidateJSON(schema, data)
}

// ValidateJSON validates data against an already compiled schema.
func ValidateJSON(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

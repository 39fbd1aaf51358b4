package llm

import "github.com/joseph-ayodele/rspl-generator/constants"

// BuildPartsJSONSchema returns the JSON-Schema of a candidate-part array as a generic map.
// It is sent to the model as guidance and used locally to validate the answer.
func BuildPartsJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":           map[string]any{"type": "string", "minLength": 1},
			"partNumber":     map[string]any{"type": []string{"string", "null"}},
			"classification": map[string]any{"type": "string", "enum": constants.ClassificationCodes()},
			"rec0_2y":        map[string]any{"type": "integer", "minimum": 0},
			"rec0_6y":        map[string]any{"type": "integer", "minimum": 0},
			"weight":         map[string]any{"type": "number", "minimum": 0},
			"reason":         map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}
	return map[string]any{
		"type":  "array",
		"items": item,
	}
}

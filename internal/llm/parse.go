package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// ParseDescriptors turns a free-text model answer into validated descriptors:
// fence stripping, first candidate array, lenient normalization, schema check.
// The returned bytes are the normalized array.
func ParseDescriptors(content string, logger *slog.Logger) ([]PartDescriptor, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	arr, err := ExtractCandidateArray(content)
	if err != nil {
		return nil, nil, err
	}
	cleaned, _, err := NormalizeDescriptors(arr, logger)
	if err != nil {
		return nil, arr, err
	}
	if err := ValidateJSONAgainstSchema(BuildPartsJSONSchema(), cleaned); err != nil {
		return nil, cleaned, fmt.Errorf("schema validation failed: %w", err)
	}

	var out []PartDescriptor
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return nil, cleaned, fmt.Errorf("unmarshal descriptors: %w", err)
	}
	return out, cleaned, nil
}

package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/rspl-generator/constants"
)

// key synonyms seen in model output, mapped to the schema names. When several
// synonyms of one key are present the earliest entry wins.
var descriptorSynonyms = []struct{ from, to string }{
	{"part_number", "partNumber"},
	{"partnumber", "partNumber"},
	{"partNo", "partNumber"},
	{"oem_part", "partNumber"},
	{"type", "classification"},
	{"category", "classification"},
	{"rec_2y", "rec0_2y"},
	{"qty_2y", "rec0_2y"},
	{"rec_6y", "rec0_6y"},
	{"qty_6y", "rec0_6y"},
	{"weight_kg", "weight"},
	{"reason_for_use", "reason"},
}

var absentPartNumbers = map[string]struct{}{
	"": {}, "null": {}, "none": {}, "n/a": {}, "na": {}, "unknown": {}, "not found": {},
}

// NormalizeDescriptors is a lenient pass over a candidate array before schema validation:
//   - drops non-object items and items without a name
//   - renames known key synonyms and removes unknown keys
//   - drops null/empty optionals, coerces numeric strings
//   - canonicalizes classification to Pr/Cr/Con (unknown values are dropped)
//
// It returns the cleaned array and a list of what was changed, for logging.
func NormalizeDescriptors(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, fmt.Errorf("normalize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	out := make([]map[string]any, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("[%d](not object)", i))
			continue
		}
		for _, syn := range descriptorSynonyms {
			if v, ok := m[syn.from]; ok {
				if _, exists := m[syn.to]; !exists {
					m[syn.to] = v
				}
				delete(m, syn.from)
			}
		}

		name, _ := m["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			dropped = append(dropped, fmt.Sprintf("[%d](no name)", i))
			continue
		}
		clean := map[string]any{"name": name}

		switch v := m["partNumber"].(type) {
		case string:
			s := strings.TrimSpace(v)
			if _, absent := absentPartNumbers[strings.ToLower(s)]; !absent {
				clean["partNumber"] = s
			}
		case float64:
			clean["partNumber"] = strconv.FormatFloat(v, 'f', -1, 64)
		}

		if v, ok := m["classification"].(string); ok {
			if c, ok := constants.Canonicalize(v); ok {
				clean["classification"] = string(c)
			} else {
				dropped = append(dropped, fmt.Sprintf("[%d].classification(%q)", i, v))
			}
		}

		for _, k := range []string{"rec0_2y", "rec0_6y"} {
			if v, present := m[k]; present && v != nil {
				if n, ok := asCount(v); ok {
					clean[k] = n
				} else {
					dropped = append(dropped, fmt.Sprintf("[%d].%s", i, k))
				}
			}
		}

		if v, present := m["weight"]; present && v != nil {
			if w, ok := asWeight(v); ok {
				clean["weight"] = w
			} else {
				dropped = append(dropped, fmt.Sprintf("[%d].weight", i))
			}
		}

		if v, ok := m["reason"].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				clean["reason"] = s
			}
		}
		out = append(out, clean)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.analyze.normalize", "dropped", dropped)
	}
	return b, dropped, nil
}

func asCount(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func asWeight(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t >= 0
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		s = strings.TrimSpace(strings.TrimSuffix(s, "kg"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoArray is returned when a response holds no well-formed candidate array.
var ErrNoArray = errors.New("no JSON array found in response")

// StripCodeFences removes markdown code fences (``` or ```json) around or inside text.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// ExtractCandidateArray returns the first well-formed JSON array in text whose
// elements are all objects (an empty array qualifies). Fences are stripped first.
func ExtractCandidateArray(text string) ([]byte, error) {
	s := StripCodeFences(text)
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		end := matchBracket(s, i)
		if end < 0 {
			continue
		}
		candidate := []byte(s[i : end+1])
		if isObjectArray(candidate) {
			return candidate, nil
		}
	}
	return nil, ErrNoArray
}

// matchBracket returns the index of the ']' closing the '[' at start, skipping
// brackets inside JSON strings, or -1.
func matchBracket(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isObjectArray(b []byte) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return false
	}
	for _, it := range items {
		var obj map[string]any
		if err := json.Unmarshal(it, &obj); err != nil || obj == nil {
			return false
		}
	}
	return true
}

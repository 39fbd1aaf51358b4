package constants

import (
	"strings"
)

// Classification is the maintenance type of a spare part. The string value is
// the short code used in the RSPL "TYPE (Pr/Cr/Con)" column.
type Classification string

const (
	Preventive Classification = "Pr"
	Corrective Classification = "Cr"
	Consumable Classification = "Con"
)

var allClassifications = []Classification{
	Preventive,
	Corrective,
	Consumable,
}

// ClassificationCodes returns the short codes in their fixed order.
func ClassificationCodes() []string {
	result := make([]string, len(allClassifications))
	for i, c := range allClassifications {
		result[i] = string(c)
	}
	return result
}

// Long returns the human readable name.
func (c Classification) Long() string {
	switch c {
	case Preventive:
		return "Preventive"
	case Corrective:
		return "Corrective"
	case Consumable:
		return "Consumable"
	}
	return string(c)
}

// Valid reports whether c is one of the three known classifications.
func (c Classification) Valid() bool {
	for _, x := range allClassifications {
		if c == x {
			return true
		}
	}
	return false
}

// Canonicalize maps a code, long name or common synonym onto a Classification.
// Unknown or empty input yields Preventive and false.
func Canonicalize(input string) (Classification, bool) {
	if input == "" {
		return Preventive, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Classification{
		"preventive":   Preventive,
		"preventative": Preventive,
		"pm":           Preventive,
		"corrective":   Corrective,
		"repair":       Corrective,
		"consumable":   Consumable,
		"consumables":  Consumable,
		"wear part":    Consumable,
		"wear":         Consumable,
	}

	if c, ok := synonyms[normalized]; ok {
		return c, true
	}

	// check if it matches any code
	for _, c := range allClassifications {
		if normalized == strings.ToLower(string(c)) {
			return c, true
		}
	}

	return Preventive, false
}

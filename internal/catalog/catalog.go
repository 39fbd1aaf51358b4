// Package catalog holds the static spare-part reference data: a keyword table
// used to recognise parts in free text, per-category default part lists and a
// generic fallback list. All tables are ordered; matching relies on that order.
package catalog

import (
	"strings"

	"github.com/joseph-ayodele/rspl-generator/constants"
)

// KeywordEntry describes the part recognised by a keyword.
type KeywordEntry struct {
	Keyword        string
	Classification constants.Classification
	Weight         float64 // kg
	UnitOfIssue    string
}

// PartTemplate is a fixed part in a category or generic default list.
type PartTemplate struct {
	Name           string
	Classification constants.Classification
	Weight         float64 // kg
	UnitOfIssue    string  // empty means the synthesizer default
}

// Category maps an equipment-type substring to its default parts.
type Category struct {
	Key   string
	Parts []PartTemplate
}

// Catalog is the complete reference data set.
type Catalog struct {
	Keywords   []KeywordEntry
	Categories []Category
	Generic    []PartTemplate
}

// Default returns a fresh copy of the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Keywords: []KeywordEntry{
			{Keyword: "heating element", Classification: constants.Corrective, Weight: 2.5, UnitOfIssue: "EA"},
			{Keyword: "thermostat", Classification: constants.Corrective, Weight: 0.3, UnitOfIssue: "EA"},
			{Keyword: "temperature sensor", Classification: constants.Corrective, Weight: 0.2, UnitOfIssue: "EA"},
			{Keyword: "door seal", Classification: constants.Consumable, Weight: 0.8, UnitOfIssue: "KIT"},
			{Keyword: "gasket kit", Classification: constants.Consumable, Weight: 0.5, UnitOfIssue: "KIT"},
			{Keyword: "control board", Classification: constants.Preventive, Weight: 1.2, UnitOfIssue: "EA"},
			{Keyword: "motor", Classification: constants.Preventive, Weight: 8.5, UnitOfIssue: "EA"},
			{Keyword: "pump", Classification: constants.Preventive, Weight: 3.2, UnitOfIssue: "EA"},
			{Keyword: "filter element", Classification: constants.Consumable, Weight: 0.4, UnitOfIssue: "EA"},
			{Keyword: "basket", Classification: constants.Consumable, Weight: 2.0, UnitOfIssue: "EA"},
			{Keyword: "bearing", Classification: constants.Preventive, Weight: 0.6, UnitOfIssue: "EA"},
			{Keyword: "seal kit", Classification: constants.Consumable, Weight: 0.3, UnitOfIssue: "KIT"},
			{Keyword: "valve", Classification: constants.Preventive, Weight: 0.4, UnitOfIssue: "EA"},
			{Keyword: "hose", Classification: constants.Consumable, Weight: 0.2, UnitOfIssue: "EA"},
			{Keyword: "connector", Classification: constants.Consumable, Weight: 0.1, UnitOfIssue: "EA"},
			{Keyword: "element", Classification: constants.Corrective, Weight: 2.0, UnitOfIssue: "EA"},
		},
		Categories: []Category{
			{Key: "oven", Parts: []PartTemplate{
				{Name: "Heating Element", Classification: constants.Corrective, Weight: 2.5},
				{Name: "Temperature Sensor", Classification: constants.Corrective, Weight: 0.2},
				{Name: "Door Seal Gasket Kit", Classification: constants.Consumable, Weight: 0.8},
				{Name: "Control Board", Classification: constants.Preventive, Weight: 1.2},
			}},
			{Key: "fryer", Parts: []PartTemplate{
				{Name: "Immersion Heating Element", Classification: constants.Corrective, Weight: 3.5},
				{Name: "Thermostat", Classification: constants.Corrective, Weight: 0.3},
				{Name: "Basket", Classification: constants.Consumable, Weight: 2.0},
				{Name: "Filter Element", Classification: constants.Consumable, Weight: 0.4},
			}},
			{Key: "griddle", Parts: []PartTemplate{
				{Name: "Surface Heating Element", Classification: constants.Corrective, Weight: 4.0},
				{Name: "Temperature Probe", Classification: constants.Corrective, Weight: 0.2},
				{Name: "Control Knob Assembly", Classification: constants.Consumable, Weight: 0.15},
			}},
			{Key: "steamer", Parts: []PartTemplate{
				{Name: "Boiler Heating Element", Classification: constants.Corrective, Weight: 2.8},
				{Name: "Pressure Switch", Classification: constants.Corrective, Weight: 0.25},
				{Name: "Door Gasket Set", Classification: constants.Consumable, Weight: 0.6},
			}},
			{Key: "mixer", Parts: []PartTemplate{
				{Name: "Motor", Classification: constants.Preventive, Weight: 8.5},
				{Name: "Gear Box", Classification: constants.Preventive, Weight: 5.0},
				{Name: "Whip Attachment", Classification: constants.Consumable, Weight: 1.5},
			}},
			{Key: "dishwasher", Parts: []PartTemplate{
				{Name: "Pump Motor", Classification: constants.Preventive, Weight: 3.2},
				{Name: "Heating Element", Classification: constants.Corrective, Weight: 2.5},
				{Name: "Spray Arm Assembly", Classification: constants.Consumable, Weight: 0.8},
			}},
		},
		Generic: []PartTemplate{
			{Name: "Control Board", Classification: constants.Preventive, Weight: 1.2},
			{Name: "Filter Element", Classification: constants.Consumable, Weight: 0.4},
		},
	}
}

// CategoryFor returns the first category whose key is a case-insensitive
// substring of equipmentType.
func (c *Catalog) CategoryFor(equipmentType string) (Category, bool) {
	equip := strings.ToLower(equipmentType)
	for _, cat := range c.Categories {
		if cat.Key != "" && strings.Contains(equip, strings.ToLower(cat.Key)) {
			return cat, true
		}
	}
	return Category{}, false
}

// DisplayName turns a keyword into a part name by upper-casing its first letter.
func DisplayName(keyword string) string {
	if keyword == "" {
		return ""
	}
	r := []rune(keyword)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

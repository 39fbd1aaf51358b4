package llm

import (
	"strings"
)

// BuildSystemPrompt composes the system message: role, output shape and the
// classification and quantity rules the synthesizer expects.
func BuildSystemPrompt(req AnalyzeRequest) string {
	parts := []string{
		"You are a maintenance engineer compiling a Recommended Spare Parts List (RSPL) for commercial equipment.",
		"Return ONLY a JSON array. Each element is an object with keys: name, partNumber, classification, rec0_2y, rec0_6y, weight, reason.",
		"'name' is required: a short spare part name as a technician would order it.",
		"'partNumber' is the OEM part number exactly as printed; use null when it is not known. Never invent a part number.",
		"'classification' MUST be one of: Pr (preventive maintenance), Cr (corrective, replaced on failure), Con (consumable, wear part).",
		"'rec0_2y' and 'rec0_6y' are integer stocking quantities for 0-2 and 0-6 years of operation; rec0_6y must be at least rec0_2y.",
		"'weight' is the item weight in kilograms as a number.",
		"'reason' is one sentence on why the part is recommended.",
		"Never output markdown, comments or prose around the array.",
	}
	switch req.Mode {
	case ModeDocument:
		parts = append(parts, "Base the list strictly on the attached parts manual. Prefer parts that the manual marks as wear, service or spare parts.")
	default:
		parts = append(parts, "No manual is available. List the parts that typically fail or wear on this kind of equipment.")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the brand/type context.
func BuildUserPrompt(req AnalyzeRequest) string {
	var b strings.Builder
	if brand := strings.TrimSpace(req.Brand); brand != "" {
		b.WriteString("Brand: ")
		b.WriteString(brand)
		b.WriteString("\n")
	}
	if equip := strings.TrimSpace(req.EquipmentType); equip != "" {
		b.WriteString("Equipment type: ")
		b.WriteString(equip)
		b.WriteString("\n")
	}
	if req.Mode == ModeDocument {
		name := strings.TrimSpace(req.DocumentName)
		if name == "" {
			name = "manual.pdf"
		}
		b.WriteString("Attached parts manual: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nReturn the spare parts JSON array now.")
	return b.String()
}

package llm

import "context"

// Mode selects how the analysis service is asked for parts.
type Mode string

const (
	// ModeDocument grounds the answer in an attached parts manual.
	ModeDocument Mode = "document"
	// ModeLookup asks for typical parts from brand/type context only.
	ModeLookup Mode = "lookup"
)

type AnalyzeRequest struct {
	Mode          Mode
	Document      []byte
	DocumentName  string
	Brand         string
	EquipmentType string
}

// PartDescriptor is one candidate part as returned by the analysis service.
// Optional fields are nil/empty when the service did not provide them.
type PartDescriptor struct {
	Name           string   `json:"name"`
	PartNumber     *string  `json:"partNumber,omitempty"`
	Classification string   `json:"classification,omitempty"` // Pr | Cr | Con
	Rec2Y          *int     `json:"rec0_2y,omitempty"`
	Rec6Y          *int     `json:"rec0_6y,omitempty"`
	Weight         *float64 `json:"weight,omitempty"` // kg
	Reason         string   `json:"reason,omitempty"`
}

// PartAnalyzer is the interface the source resolver depends on.
type PartAnalyzer interface {
	AnalyzeParts(ctx context.Context, req AnalyzeRequest) ([]PartDescriptor, []byte /*rawJSON*/, error)
}

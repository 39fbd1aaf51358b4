package entity

import "github.com/joseph-ayodele/rspl-generator/constants"

// NotFoundPartNumber marks a part whose supplier number could not be established.
const NotFoundPartNumber = "NOT FOUND"

// PartRecord is one fully specified row of the RSPL table. Every field is set.
type PartRecord struct {
	Name                      string                   `json:"name"`
	SupplierPartNumber        string                   `json:"supplier_part_number"`
	CageCode                  string                   `json:"cage_code"`
	HSCode                    string                   `json:"hs_code"`
	CountryOfOrigin           string                   `json:"country_of_origin"`
	QuantityPerAssembly       int                      `json:"quantity_per_assembly"`
	Classification            constants.Classification `json:"classification"`
	RecommendedQty2Y          int                      `json:"recommended_qty_2y"`
	RecommendedQty6Y          int                      `json:"recommended_qty_6y"`
	UnitOfIssue               string                   `json:"unit_of_issue"`
	Reason                    string                   `json:"reason"`
	MinSalesQty               int                      `json:"min_sales_qty"`
	StandardPackageQty        int                      `json:"standard_package_qty"`
	ItemDimensions            string                   `json:"item_dimensions"`
	ItemWeight                float64                  `json:"item_weight"`
	PackagingDimensions       string                   `json:"packaging_dimensions"`
	PackagingWeight           float64                  `json:"packaging_weight"`
	ShelfLifeDays             int                      `json:"shelf_life_days"`
	SpecialStorage            bool                     `json:"special_storage"`
	RepairLevel               string                   `json:"repair_level"`
	RequiredForAcceptanceTest bool                     `json:"required_for_acceptance_test"`
	Remarks                   string                   `json:"remarks"`
}

// CandidatePart is the intermediate output of part identification. Optional
// fields are nil when the evidence did not carry them.
type CandidatePart struct {
	Name           string
	PartNumber     *string
	Classification constants.Classification
	BaseWeight     *float64
	UnitOfIssue    string
	Reason         string
	Qty2Y          *int
	Qty6Y          *int
}

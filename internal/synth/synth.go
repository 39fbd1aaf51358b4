// Package synth expands candidate parts into complete RSPL records.
package synth

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
	"github.com/joseph-ayodele/rspl-generator/internal/metrics"
)

const (
	PackagingWeightRatio = 1.3

	ShelfLifeConsumableDays = 730
	ShelfLifeDefaultDays    = 1825

	RepairLevelOrganizational = "OLM"
	RepairLevelDepot          = "DLM"

	DefaultUnitOfIssue = "EA"
)

// FallbackWeight is the item weight (kg) used when a candidate carries none.
func FallbackWeight(c constants.Classification) float64 {
	switch c {
	case constants.Corrective:
		return 0.5
	case constants.Consumable:
		return 0.4
	default:
		return 1.2
	}
}

// DefaultQuantities returns the 0-2 and 0-6 year stocking quantities for a classification.
func DefaultQuantities(c constants.Classification) (int, int) {
	switch c {
	case constants.Preventive:
		return 1, 1
	case constants.Consumable:
		return 2, 5
	default:
		return 1, 2
	}
}

type Synthesizer struct {
	gen AttributeGenerator
}

// NewSynthesizer uses gen for placeholder attributes; nil selects RandomAttributes.
func NewSynthesizer(gen AttributeGenerator) *Synthesizer {
	if gen == nil {
		gen = NewRandomAttributes(0)
	}
	return &Synthesizer{gen: gen}
}

// SynthesizeAll maps every candidate to a record, preserving order.
func (s *Synthesizer) SynthesizeAll(cands []entity.CandidatePart, brand, equipmentType string) []entity.PartRecord {
	out := make([]entity.PartRecord, 0, len(cands))
	for _, c := range cands {
		rec := s.Synthesize(c, brand, equipmentType)
		metrics.RecordPart(string(rec.Classification))
		out = append(out, rec)
	}
	return out
}

func (s *Synthesizer) Synthesize(c entity.CandidatePart, brand, equipmentType string) entity.PartRecord {
	cls := c.Classification
	if !cls.Valid() {
		cls = constants.Preventive
	}

	q2, q6 := DefaultQuantities(cls)
	if c.Qty2Y != nil && c.Qty6Y != nil && *c.Qty2Y >= 0 && *c.Qty6Y >= *c.Qty2Y {
		q2, q6 = *c.Qty2Y, *c.Qty6Y
	}

	weight := FallbackWeight(cls)
	if c.BaseWeight != nil && *c.BaseWeight > 0 {
		weight = *c.BaseWeight
	}
	weight = Round2(weight)

	partNumber := entity.NotFoundPartNumber
	if c.PartNumber != nil && strings.TrimSpace(*c.PartNumber) != "" {
		partNumber = *c.PartNumber
	}

	unit := strings.TrimSpace(c.UnitOfIssue)
	if unit == "" {
		unit = DefaultUnitOfIssue
	}

	subject := Subject(brand, equipmentType)
	reason := "Critical component for " + subject
	remarks := "Recommended spare for " + subject + ". Verify compatibility before ordering."
	if r := strings.TrimSpace(c.Reason); r != "" {
		reason, remarks = r, r
	}

	shelf := ShelfLifeDefaultDays
	repair := RepairLevelDepot
	if cls == constants.Consumable {
		shelf = ShelfLifeConsumableDays
	}
	if cls == constants.Preventive {
		repair = RepairLevelOrganizational
	}

	attrs := s.gen.Generate(c)
	return entity.PartRecord{
		Name:                      c.Name,
		SupplierPartNumber:        partNumber,
		CageCode:                  attrs.CageCode,
		HSCode:                    attrs.HSCode,
		CountryOfOrigin:           attrs.CountryOfOrigin,
		QuantityPerAssembly:       1,
		Classification:            cls,
		RecommendedQty2Y:          q2,
		RecommendedQty6Y:          q6,
		UnitOfIssue:               unit,
		Reason:                    reason,
		MinSalesQty:               attrs.MinSalesQty,
		StandardPackageQty:        attrs.StandardPackageQty,
		ItemDimensions:            attrs.ItemDimensions,
		ItemWeight:                weight,
		PackagingDimensions:       attrs.PackagingDimensions,
		PackagingWeight:           PackagingWeight(weight),
		ShelfLifeDays:             shelf,
		SpecialStorage:            cls == constants.Consumable,
		RepairLevel:               repair,
		RequiredForAcceptanceTest: true,
		Remarks:                   remarks,
	}
}

// PackagingWeight is itemWeight x 1.3, rounded to 2 decimals.
func PackagingWeight(itemWeight float64) float64 {
	return Round2(itemWeight * PackagingWeightRatio)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Subject is the "<brand> <type>" phrase used in templated text.
func Subject(brand, equipmentType string) string {
	s := strings.TrimSpace(strings.TrimSpace(brand) + " " + strings.TrimSpace(equipmentType))
	if s == "" {
		return "the equipment"
	}
	return s
}

package synth

import (
	"fmt"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

var stubAttrs = FixedAttributes{
	CageCode:            "12345",
	HSCode:              "8419",
	CountryOfOrigin:     "DE",
	ItemDimensions:      "10 x 5 x 3",
	PackagingDimensions: "20 x 15 x 10",
	MinSalesQty:         1,
	StandardPackageQty:  1,
}

func ptr[T any](v T) *T { return &v }

func TestSynthesize_ClassificationDefaults(t *testing.T) {
	s := NewSynthesizer(stubAttrs)

	tests := []struct {
		cls        constants.Classification
		q2, q6     int
		weight     float64
		shelf      int
		storage    bool
		repair     string
		wantCls    constants.Classification
		wantWeight float64
	}{
		{constants.Preventive, 1, 1, 1.2, 1825, false, "OLM", constants.Preventive, 1.2},
		{constants.Corrective, 1, 2, 0.5, 1825, false, "DLM", constants.Corrective, 0.5},
		{constants.Consumable, 2, 5, 0.4, 730, true, "DLM", constants.Consumable, 0.4},
		{"", 1, 1, 1.2, 1825, false, "OLM", constants.Preventive, 1.2},
	}
	for _, tt := range tests {
		t.Run(string(tt.wantCls), func(t *testing.T) {
			rec := s.Synthesize(entity.CandidatePart{Name: "Part", Classification: tt.cls}, "Rational", "Oven")
			assert.Equal(t, tt.wantCls, rec.Classification)
			assert.Equal(t, tt.q2, rec.RecommendedQty2Y)
			assert.Equal(t, tt.q6, rec.RecommendedQty6Y)
			assert.Equal(t, tt.wantWeight, rec.ItemWeight)
			assert.Equal(t, tt.shelf, rec.ShelfLifeDays)
			assert.Equal(t, tt.storage, rec.SpecialStorage)
			assert.Equal(t, tt.repair, rec.RepairLevel)
			assert.True(t, rec.RequiredForAcceptanceTest)
			assert.Equal(t, 1, rec.QuantityPerAssembly)
			assert.Equal(t, DefaultUnitOfIssue, rec.UnitOfIssue)
		})
	}
}

func TestSynthesize_TemplatedText(t *testing.T) {
	s := NewSynthesizer(stubAttrs)
	rec := s.Synthesize(entity.CandidatePart{Name: "Thermostat", Classification: constants.Corrective}, "Frima", "Fryer")

	assert.Equal(t, entity.NotFoundPartNumber, rec.SupplierPartNumber)
	assert.Equal(t, "Critical component for Frima Fryer", rec.Reason)
	assert.Equal(t, "Recommended spare for Frima Fryer. Verify compatibility before ordering.", rec.Remarks)
	assert.Equal(t, "12345", rec.CageCode)
	assert.Equal(t, "DE", rec.CountryOfOrigin)
	assert.Equal(t, "10 x 5 x 3", rec.ItemDimensions)
}

func TestSynthesize_EvidenceValuesPreserved(t *testing.T) {
	s := NewSynthesizer(stubAttrs)
	c := entity.CandidatePart{
		Name:           "Door Gasket",
		PartNumber:     ptr("60.73.000"),
		Classification: constants.Consumable,
		BaseWeight:     ptr(0.833),
		UnitOfIssue:    "KIT",
		Reason:         "Wears with door cycles",
		Qty2Y:          ptr(3),
		Qty6Y:          ptr(8),
	}
	rec := s.Synthesize(c, "Rational", "Oven")

	assert.Equal(t, "60.73.000", rec.SupplierPartNumber)
	assert.Equal(t, 0.83, rec.ItemWeight)
	assert.Equal(t, 1.08, rec.PackagingWeight)
	assert.Equal(t, "KIT", rec.UnitOfIssue)
	assert.Equal(t, 3, rec.RecommendedQty2Y)
	assert.Equal(t, 8, rec.RecommendedQty6Y)
	assert.Equal(t, "Wears with door cycles", rec.Reason)
	assert.Equal(t, "Wears with door cycles", rec.Remarks)
}

func TestSynthesize_InvalidEvidenceQuantitiesIgnored(t *testing.T) {
	s := NewSynthesizer(stubAttrs)
	for _, qs := range [][2]*int{
		{ptr(5), ptr(2)}, // 6y below 2y
		{ptr(-1), ptr(2)},
		{ptr(2), nil},
		{nil, ptr(4)},
	} {
		rec := s.Synthesize(entity.CandidatePart{Name: "x", Classification: constants.Consumable, Qty2Y: qs[0], Qty6Y: qs[1]}, "", "")
		assert.Equal(t, 2, rec.RecommendedQty2Y)
		assert.Equal(t, 5, rec.RecommendedQty6Y)
	}
}

func TestSynthesize_EmptyContext(t *testing.T) {
	rec := NewSynthesizer(stubAttrs).Synthesize(entity.CandidatePart{Name: "x"}, " ", "")
	assert.Equal(t, "Critical component for the equipment", rec.Reason)
}

func TestSynthesizeAll_Invariants(t *testing.T) {
	s := NewSynthesizer(NewRandomAttributes(42))
	var cands []entity.CandidatePart
	for i, cls := range []constants.Classification{constants.Preventive, constants.Corrective, constants.Consumable, "bogus"} {
		cands = append(cands, entity.CandidatePart{Name: fmt.Sprintf("p%d", i), Classification: cls, BaseWeight: ptr(0.1 + float64(i)*1.237)})
	}
	recs := s.SynthesizeAll(cands, "Brand", "Type")
	require.Len(t, recs, len(cands))

	for i, r := range recs {
		assert.Equal(t, cands[i].Name, r.Name, "order preserved")
		assert.GreaterOrEqual(t, r.RecommendedQty6Y, r.RecommendedQty2Y)
		assert.Equal(t, Round2(r.ItemWeight*1.3), r.PackagingWeight)
		assert.True(t, r.Classification.Valid())
	}
}

func TestRandomAttributes_Ranges(t *testing.T) {
	g := NewRandomAttributes(7)
	dims := regexp.MustCompile(`^(\d+) x (\d+) x (\d+)$`)

	inRange := func(s string, lo, hi int) {
		n, err := strconv.Atoi(s)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, lo)
		assert.LessOrEqual(t, n, hi)
	}

	for range 200 {
		a := g.Generate(entity.CandidatePart{})
		inRange(a.CageCode, 10000, 99999)
		inRange(a.HSCode, 8400, 16399)
		assert.Contains(t, Countries, a.CountryOfOrigin)
		assert.Equal(t, 1, a.MinSalesQty)
		assert.Equal(t, 1, a.StandardPackageQty)

		m := dims.FindStringSubmatch(a.ItemDimensions)
		require.Len(t, m, 4)
		inRange(m[1], 10, 39)
		inRange(m[2], 5, 29)
		inRange(m[3], 3, 22)

		m = dims.FindStringSubmatch(a.PackagingDimensions)
		require.Len(t, m, 4)
		inRange(m[1], 20, 69)
		inRange(m[2], 15, 54)
		inRange(m[3], 10, 39)
	}
}

func TestRandomAttributes_SeedDeterministic(t *testing.T) {
	a := NewRandomAttributes(99).Generate(entity.CandidatePart{})
	b := NewRandomAttributes(99).Generate(entity.CandidatePart{})
	assert.Equal(t, a, b)
}

// Package identify turns resolved evidence into candidate parts. All functions
// are pure over their inputs and never return an empty list.
package identify

import (
	"strings"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/catalog"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
	"github.com/joseph-ayodele/rspl-generator/internal/llm"
	"github.com/joseph-ayodele/rspl-generator/internal/source"
)

// MinTextLength is the shortest text evidence that is scanned for keywords.
const MinTextLength = 10

// Identify dispatches on the evidence kind.
func Identify(ev source.Evidence, equipmentType string, cat *catalog.Catalog) []entity.CandidatePart {
	if cat == nil {
		cat = catalog.Default()
	}
	if ev.Kind == source.EvidenceStructured {
		if parts := FromDescriptors(ev.Descriptors); len(parts) > 0 {
			return parts
		}
		return CategoryDefaults(equipmentType, cat)
	}
	if len(strings.TrimSpace(ev.Text)) < MinTextLength {
		return CategoryDefaults(equipmentType, cat)
	}
	if parts := MatchKeywords(ev.Text, cat); len(parts) > 0 {
		return parts
	}
	return CategoryDefaults(equipmentType, cat)
}

// MatchKeywords emits one candidate per catalog keyword found as a
// case-insensitive substring of text, in catalog order.
func MatchKeywords(text string, cat *catalog.Catalog) []entity.CandidatePart {
	lower := strings.ToLower(text)
	var out []entity.CandidatePart
	for _, kw := range cat.Keywords {
		if kw.Keyword == "" || !strings.Contains(lower, kw.Keyword) {
			continue
		}
		w := kw.Weight
		out = append(out, entity.CandidatePart{
			Name:           catalog.DisplayName(kw.Keyword),
			Classification: kw.Classification,
			BaseWeight:     &w,
			UnitOfIssue:    kw.UnitOfIssue,
		})
	}
	return out
}

// CategoryDefaults returns the fixed list of the first category matching
// equipmentType, or the generic list.
func CategoryDefaults(equipmentType string, cat *catalog.Catalog) []entity.CandidatePart {
	templates := cat.Generic
	if c, ok := cat.CategoryFor(equipmentType); ok {
		templates = c.Parts
	}
	out := make([]entity.CandidatePart, 0, len(templates))
	for _, p := range templates {
		w := p.Weight
		out = append(out, entity.CandidatePart{
			Name:           p.Name,
			Classification: p.Classification,
			BaseWeight:     &w,
			UnitOfIssue:    p.UnitOfIssue,
		})
	}
	return out
}

// FromDescriptors passes analysis-service descriptors through. Nameless
// entries are dropped and names are deduplicated case-insensitively, keeping
// the first occurrence.
func FromDescriptors(descs []llm.PartDescriptor) []entity.CandidatePart {
	seen := make(map[string]struct{}, len(descs))
	out := make([]entity.CandidatePart, 0, len(descs))
	for _, d := range descs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		cls, _ := constants.Canonicalize(d.Classification)
		c := entity.CandidatePart{
			Name:           name,
			Classification: cls,
			Reason:         strings.TrimSpace(d.Reason),
		}
		if d.PartNumber != nil {
			if pn := strings.TrimSpace(*d.PartNumber); pn != "" {
				c.PartNumber = &pn
			}
		}
		if d.Weight != nil && *d.Weight > 0 {
			w := *d.Weight
			c.BaseWeight = &w
		}
		if d.Rec2Y != nil {
			v := *d.Rec2Y
			c.Qty2Y = &v
		}
		if d.Rec6Y != nil {
			v := *d.Rec6Y
			c.Qty6Y = &v
		}
		out = append(out, c)
	}
	return out
}

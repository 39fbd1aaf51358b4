// Package source resolves the evidence a job's parts are identified from:
// an uploaded parts manual or a brand/type lookup.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/extract"
	"github.com/joseph-ayodele/rspl-generator/internal/llm"
	"github.com/joseph-ayodele/rspl-generator/internal/metrics"
)

type EvidenceKind string

const (
	// EvidenceText is free text for keyword matching.
	EvidenceText EvidenceKind = "text"
	// EvidenceStructured is a descriptor list from the analysis service.
	EvidenceStructured EvidenceKind = "structured"
)

// Evidence is the raw material for part identification.
type Evidence struct {
	Kind        EvidenceKind
	Text        string
	Descriptors []llm.PartDescriptor
	Raw         []byte
	Method      string
}

type Request struct {
	Document      *extract.Document
	Brand         string
	EquipmentType string
}

// HasDocument reports whether the request carries document bytes.
func (r Request) HasDocument() bool {
	return r.Document != nil && len(r.Document.Data) > 0
}

// Resolver obtains evidence. Without an analyzer it runs offline: documents
// are reduced to printable text and lookups produce a short query text.
type Resolver struct {
	analyzer  llm.PartAnalyzer
	extractor extract.TextExtractor
	log       *slog.Logger
}

// NewResolver builds a resolver. analyzer may be nil.
func NewResolver(analyzer llm.PartAnalyzer, extractor extract.TextExtractor, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = extract.NewPrintableExtractor(logger)
	}
	return &Resolver{analyzer: analyzer, extractor: extractor, log: logger}
}

// Offline reports whether the resolver works without the analysis service.
func (r *Resolver) Offline() bool {
	return r.analyzer == nil
}

func (r *Resolver) Resolve(ctx context.Context, req Request) (Evidence, error) {
	start := time.Now()
	brand := strings.TrimSpace(req.Brand)
	equip := strings.TrimSpace(req.EquipmentType)
	hasDoc := req.HasDocument()

	if !hasDoc && (brand == "" || equip == "") {
		return Evidence{}, common.SourceUnavailable("no document and brand/equipment type incomplete")
	}

	if r.analyzer != nil {
		return r.analyze(ctx, req, brand, equip, start)
	}

	if hasDoc {
		res, err := r.extractor.Extract(ctx, req.Document)
		if err != nil {
			r.log.Error("source.extract.error", "document", req.Document.Name, "error", err)
			return Evidence{}, common.NewAppError(common.CodeSourceUnavailable, "extract document text",
				fmt.Errorf("%w: %w", common.ErrSourceUnavailable, err))
		}
		r.log.Info("source.resolve.ok",
			"kind", EvidenceText,
			"method", res.Method,
			"text_len", len(res.Text),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Evidence{Kind: EvidenceText, Text: res.Text, Method: res.Method}, nil
	}

	text := LookupText(brand, equip)
	r.log.Info("source.resolve.ok",
		"kind", EvidenceText,
		"method", "offline-lookup",
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Evidence{Kind: EvidenceText, Text: text, Method: "offline-lookup"}, nil
}

func (r *Resolver) analyze(ctx context.Context, req Request, brand, equip string, start time.Time) (Evidence, error) {
	areq := llm.AnalyzeRequest{
		Mode:          llm.ModeLookup,
		Brand:         brand,
		EquipmentType: equip,
	}
	if req.HasDocument() {
		areq.Mode = llm.ModeDocument
		areq.Document = req.Document.Data
		areq.DocumentName = req.Document.Name
	}

	descs, raw, err := r.analyzer.AnalyzeParts(ctx, areq)
	metrics.RecordAnalysis(string(areq.Mode), err)
	if err != nil {
		r.log.Error("source.analyze.error",
			"mode", areq.Mode,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Evidence{}, common.Upstream("analysis service failed", err)
	}

	r.log.Info("source.resolve.ok",
		"kind", EvidenceStructured,
		"mode", areq.Mode,
		"descriptors", len(descs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Evidence{Kind: EvidenceStructured, Descriptors: descs, Raw: raw, Method: string(areq.Mode)}, nil
}

// LookupText is the query text used for an offline brand/type lookup.
func LookupText(brand, equipmentType string) string {
	return brand + " " + equipmentType + " parts manual. Contains information about spare parts."
}

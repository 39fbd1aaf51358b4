package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MethodPDFText is the Method reported when pdftotext produced the text.
const MethodPDFText = "pdf-text"

// PDFTextExtractor runs poppler's pdftotext on the document. When the tool is
// missing, fails, or yields only whitespace, it falls back to printable bytes.
type PDFTextExtractor struct {
	bin      string
	runner   Runner
	fallback TextExtractor
	log      *slog.Logger
}

// NewPDFTextExtractor uses bin ("pdftotext" when empty) and falls back to a PrintableExtractor.
func NewPDFTextExtractor(bin string, logger *slog.Logger) *PDFTextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if bin == "" {
		bin = "pdftotext"
	}
	return &PDFTextExtractor{
		bin:      bin,
		runner:   execRunner{log: logger},
		fallback: NewPrintableExtractor(logger),
		log:      logger,
	}
}

// WithRunner replaces the command runner.
func (e *PDFTextExtractor) WithRunner(r Runner) *PDFTextExtractor {
	e.runner = r
	return e
}

func (e *PDFTextExtractor) Extract(ctx context.Context, doc *Document) (TextExtractionResult, error) {
	start := time.Now()
	if doc.Empty() {
		return e.fallback.Extract(ctx, doc)
	}

	text, err := e.pdfToText(ctx, doc.Data)
	if err != nil || strings.TrimSpace(text) == "" {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return TextExtractionResult{}, ctxErr
		}
		e.log.Info("extract.pdftotext.fallback", "name", doc.Name, "error", err)
		return e.fallback.Extract(ctx, doc)
	}

	res := TextExtractionResult{
		Text:     text,
		Method:   MethodPDFText,
		Bytes:    len(doc.Data),
		Duration: time.Since(start),
	}
	e.log.Debug("extract.text.ok",
		"name", doc.Name,
		"method", res.Method,
		"pages", 1+strings.Count(text, "\f"),
		"text_len", len(text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *PDFTextExtractor) pdfToText(ctx context.Context, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "rspl-doc-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.log.Warn("extract.tmp.cleanup_failed", "dir", dir, "error", err)
		}
	}()

	path := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", e.bin, err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return string(out), nil
}

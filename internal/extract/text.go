package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// TextExtractor reduces a document to plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *Document) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Method   string
	Bytes    int
	Duration time.Duration
}

// MethodPrintable is the Method reported by PrintableExtractor.
const MethodPrintable = "printable-bytes"

// PrintableExtractor keeps the printable ASCII bytes (32..126) of a document.
// It does not parse PDF structure; keyword matching only needs visible words.
type PrintableExtractor struct {
	log *slog.Logger
}

func NewPrintableExtractor(logger *slog.Logger) *PrintableExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrintableExtractor{log: logger}
}

func (e *PrintableExtractor) Extract(ctx context.Context, doc *Document) (TextExtractionResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return TextExtractionResult{}, err
	}
	if doc == nil {
		return TextExtractionResult{Method: MethodPrintable}, nil
	}

	text := PrintableText(doc.Data)
	res := TextExtractionResult{
		Text:     text,
		Method:   MethodPrintable,
		Bytes:    len(doc.Data),
		Duration: time.Since(start),
	}
	e.log.Debug("extract.text.ok",
		"name", doc.Name,
		"bytes", res.Bytes,
		"text_len", len(text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// PrintableText returns the bytes of data in the range 32..126, in order.
func PrintableText(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		}
	}
	return b.String()
}

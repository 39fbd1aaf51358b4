package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/llm"
)

// AnalyzeParts implements llm.PartAnalyzer using chat/completions. In document
// mode the PDF is attached as a base64 file content part.
func (c *Client) AnalyzeParts(ctx context.Context, req llm.AnalyzeRequest) ([]llm.PartDescriptor, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.analyze.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"mode", req.Mode,
		"document_bytes", len(req.Document),
		"brand", req.Brand,
		"equipment_type", req.EquipmentType,
	)

	if req.Mode == llm.ModeDocument && len(req.Document) == 0 {
		return nil, nil, errors.New("document mode requires document bytes")
	}

	schema := llm.BuildPartsJSONSchema()
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		// json_object mode forbids a top-level array, so the answer is free text
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
			{"role": "user", "content": userContent(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if httpErr != nil {
		c.log.Error("llm.analyze.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("openai: %w", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.analyze.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.analyze.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	out, cleaned, err := llm.ParseDescriptors(content, c.log)
	if err != nil {
		c.log.Error("llm.analyze.parse_failed",
			"req_id", rid, "error", err, "content", truncate(content, 2000),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, []byte(content), fmt.Errorf("parse openai answer: %w", err)
	}

	c.log.Info("llm.analyze.ok",
		"req_id", rid,
		"parts", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

// userContent is plain text in lookup mode and a text+file part list in document mode.
func userContent(req llm.AnalyzeRequest) any {
	text := llm.BuildUserPrompt(req)
	if req.Mode != llm.ModeDocument {
		return text
	}
	name := strings.TrimSpace(req.DocumentName)
	if name == "" {
		name = "manual." + constants.DocumentExt
	}
	return []map[string]any{
		{"type": "text", "text": text},
		{"type": "file", "file": map[string]any{
			"filename":  name,
			"file_data": "data:" + constants.DocumentContentType + ";base64," + base64.StdEncoding.EncodeToString(req.Document),
		}},
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

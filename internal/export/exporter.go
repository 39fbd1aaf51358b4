// Package export serializes completed jobs into the fixed RSPL table.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatTSV  Format = "tsv"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeTSV  = "text/tab-separated-values; charset=utf-8"

	// SheetName is the worksheet holding the table.
	SheetName = "RSPL"
)

// ParseFormat accepts "xlsx" or "tsv" (case-insensitive); empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatTSV:
		return FormatTSV, nil
	}
	return "", common.InvalidRequest("unsupported export format %q (want xlsx or tsv)", s)
}

func (f Format) ContentType() string {
	if f == FormatTSV {
		return ContentTypeTSV
	}
	return ContentTypeXLSX
}

// Document is a finished export.
type Document struct {
	Filename    string
	ContentType string
	Rows        [][]string
	Data        []byte
}

type Exporter struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger, now: time.Now}
}

// Export renders a Completed job. Any other status is ErrNotExportable.
func (e *Exporter) Export(job *entity.Job, format Format) (*Document, error) {
	start := time.Now()
	if job == nil {
		return nil, common.NotExportable("no job")
	}
	if job.Status != constants.JobStatusCompleted {
		return nil, common.NotExportable("job %s is %s, only %s jobs can be exported", job.ID, job.Status, constants.JobStatusCompleted)
	}

	rows := Rows(job)
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = writeXLSX(rows)
	case FormatTSV:
		data, err = writeTSV(rows)
	default:
		return nil, common.InvalidRequest("unsupported export format %q", format)
	}
	if err != nil {
		e.logger.Error("export.write.failed", "job_id", job.ID, "format", format, "error", err)
		return nil, fmt.Errorf("%s write: %w", format, err)
	}

	doc := &Document{
		Filename:    jobFilename(job, e.now(), format),
		ContentType: format.ContentType(),
		Rows:        rows,
		Data:        data,
	}
	e.logger.Info("export."+string(format)+".ok",
		"job_id", job.ID,
		"rows", len(rows)-1,
		"bytes", len(data),
		"filename", doc.Filename,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// filenamePlaceholder stands in for an empty brand or equipment type.
const filenamePlaceholder = "unknown"

// Filename follows RSPL_<brand>_<equipmentType>_<YYYY-MM-DD>.<ext>. Characters
// unsafe in a file name are replaced by '-'; an empty part becomes "unknown".
func Filename(brand, equipmentType string, date time.Time, format Format) string {
	clean := func(s string) string {
		s = strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(s), "-"), "-")
		if s == "" {
			return filenamePlaceholder
		}
		return s
	}
	return fmt.Sprintf("RSPL_%s_%s_%s.%s", clean(brand), clean(equipmentType), date.Format("2006-01-02"), format)
}

// jobFilename names a document-only job after its source document.
func jobFilename(job *entity.Job, date time.Time, format Format) string {
	brand := job.Brand
	if strings.TrimSpace(brand) == "" && job.SourceDocumentName != "" {
		base := filepath.Base(job.SourceDocumentName)
		brand = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Filename(brand, job.EquipmentType, date, format)
}

// column widths by header position; unlisted columns keep the default
var columnWidths = map[int]float64{
	1: 32, 2: 22, 3: 14, 4: 10, 5: 6, 6: 12, 7: 10, 8: 14, 9: 14, 10: 10,
	11: 48, 12: 10, 13: 14, 14: 18, 15: 12, 16: 20, 17: 14, 18: 12, 19: 12,
	20: 10, 21: 14, 22: 60,
}

func writeXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	for col, w := range columnWidths {
		name, _ := excelize.ColumnNumberToName(col)
		_ = f.SetColWidth(SheetName, name, name, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

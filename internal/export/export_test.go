package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

func completedJob() *entity.Job {
	return &entity.Job{
		ID:            "job_1",
		Brand:         "Rational",
		EquipmentType: "Commercial Oven",
		Status:        constants.JobStatusCompleted,
		Progress:      100,
		Results: []entity.PartRecord{
			{
				Name: "Heating Element", SupplierPartNumber: entity.NotFoundPartNumber, CageCode: "12345", HSCode: "8516",
				CountryOfOrigin: "DE", QuantityPerAssembly: 1, Classification: constants.Corrective,
				RecommendedQty2Y: 1, RecommendedQty6Y: 2, UnitOfIssue: "EA", Reason: "Critical component for Rational Commercial Oven",
				MinSalesQty: 1, StandardPackageQty: 1, ItemDimensions: "30 x 10 x 5", ItemWeight: 2.5,
				PackagingDimensions: "40 x 20 x 15", PackagingWeight: 3.25, ShelfLifeDays: 1825,
				SpecialStorage: false, RepairLevel: "DLM", RequiredForAcceptanceTest: true, Remarks: "Recommended spare",
			},
			{
				Name: "Door Seal Gasket Kit", SupplierPartNumber: "87.00.045", Classification: constants.Consumable,
				RecommendedQty2Y: 2, RecommendedQty6Y: 5, UnitOfIssue: "EA", ItemWeight: 0.8, PackagingWeight: 1.04,
				ShelfLifeDays: 730, SpecialStorage: true, RepairLevel: "DLM", RequiredForAcceptanceTest: true,
			},
		},
	}
}

func fixedExporter() *Exporter {
	e := NewExporter(nil)
	e.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestHeader(t *testing.T) {
	require.Len(t, Header, 22)
	assert.Equal(t, "SPARE PART NAME", Header[0])
	assert.Equal(t, "TYPE (Pr/Cr/Con)", Header[6])
	assert.Equal(t, "REMARKS", Header[21])
}

func TestRecordRow(t *testing.T) {
	row := RecordRow(completedJob().Results[0])
	require.Len(t, row, len(Header))
	assert.Equal(t, "Heating Element", row[0])
	assert.Equal(t, "NOT FOUND", row[1])
	assert.Equal(t, "1", row[5])
	assert.Equal(t, "Cr", row[6])
	assert.Equal(t, "2", row[8])
	assert.Equal(t, "2.50", row[14])
	assert.Equal(t, "3.25", row[16])
	assert.Equal(t, "1825", row[17])
	assert.Equal(t, "N", row[18])
	assert.Equal(t, "Y", row[20])
}

func TestExport_NotCompleted(t *testing.T) {
	e := fixedExporter()
	for _, st := range []constants.JobStatus{constants.JobStatusPending, constants.JobStatusProcessing, constants.JobStatusFailed} {
		job := completedJob()
		job.Status = st
		_, err := e.Export(job, FormatXLSX)
		assert.True(t, errors.Is(err, common.ErrNotExportable), st)
		assert.Equal(t, constants.JobStatusCompleted, completedJob().Status)
	}
}

func TestExport_XLSX(t *testing.T) {
	doc, err := fixedExporter().Export(completedJob(), FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "RSPL_Rational_Commercial-Oven_2026-10-17.xlsx", doc.Filename)
	assert.Equal(t, ContentTypeXLSX, doc.ContentType)
	assert.Len(t, doc.Rows, 3)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Heating Element", rows[1][0])
	assert.Equal(t, "Door Seal Gasket Kit", rows[2][0])
	assert.Equal(t, "Con", rows[2][6])
	assert.Equal(t, "Y", rows[2][18])
}

func TestExport_TSV(t *testing.T) {
	doc, err := fixedExporter().Export(completedJob(), FormatTSV)
	require.NoError(t, err)
	assert.Equal(t, "RSPL_Rational_Commercial-Oven_2026-10-17.tsv", doc.Filename)

	r := csv.NewReader(bytes.NewReader(doc.Data))
	r.Comma = '\t'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, doc.Rows, rows)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat(" TSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatTSV, f)

	_, err = ParseFormat("pdf")
	assert.True(t, errors.Is(err, common.ErrInvalidRequest))
}

func TestFilename_Sanitized(t *testing.T) {
	name := Filename("A/B  Co", "Oven\\Deck", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), FormatXLSX)
	assert.Equal(t, "RSPL_A-B-Co_Oven-Deck_2026-01-02.xlsx", name)
}

func TestFilename_EmptyParts(t *testing.T) {
	date := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "RSPL_unknown_unknown_2026-10-17.xlsx", Filename("", "  ", date, FormatXLSX))
	assert.Equal(t, "RSPL_Frima_unknown_2026-10-17.tsv", Filename("Frima", "///", date, FormatTSV))
}

func TestExport_DocumentOnlyFilename(t *testing.T) {
	job := completedJob()
	job.Brand, job.EquipmentType = "", ""
	job.SourceDocumentName = "Service Manual v2.pdf"

	doc, err := fixedExporter().Export(job, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "RSPL_Service-Manual-v2_unknown_2026-10-17.xlsx", doc.Filename)
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewDirSaver(dir, nil)

	path, err := s.Save(context.Background(), &Document{Filename: "../RSPL_x.tsv", Data: []byte("a\tb\n")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "RSPL_x.tsv"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n", string(got))
}

func TestSummarize(t *testing.T) {
	s := Summarize(completedJob())
	assert.Equal(t, Summary{Parts: 2, Corrective: 1, Consumable: 1}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

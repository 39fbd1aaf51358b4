// Package ingest generates RSPLs for PDF manuals found on disk, either by
// walking a directory once or by watching it for new files.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/rspl-generator/internal/entity"
	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
)

// Result is the per-file outcome.
type Result struct {
	Path         string
	JobID        string
	HashHex      string
	ExportPath   string
	Deduplicated bool
	Err          string
}

// DirStats summarizes a directory run.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Generator is satisfied by *pipeline.Orchestrator.
type Generator interface {
	Generate(ctx context.Context, req pipeline.CreateRequest) (*entity.Job, error)
	Export(ctx context.Context, id string, format export.Format) (*export.Document, error)
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/extract"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
)

// Config fixes the request fields applied to every manual.
type Config struct {
	Brand         string
	EquipmentType string
	Format        export.Format
	SkipHidden    bool
}

type Ingestor struct {
	gen   Generator
	saver export.Saver
	cfg   Config
	log   *slog.Logger

	mu   sync.Mutex
	seen map[string]Result // by document sha256
}

func NewIngestor(gen Generator, saver export.Saver, cfg Config, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Format == "" {
		cfg.Format = export.FormatXLSX
	}
	return &Ingestor{gen: gen, saver: saver, cfg: cfg, log: logger, seen: make(map[string]Result)}
}

// IngestPath generates and saves the RSPL for one manual. A manual whose
// content was already processed returns the earlier result marked Deduplicated.
func (in *Ingestor) IngestPath(ctx context.Context, path string) (Result, error) {
	res := Result{Path: path}
	if !isPDF(path) {
		return res, fmt.Errorf("not a pdf: %s", path)
	}
	// #nosec G304 -- path comes from a directory the operator chose
	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	doc := &extract.Document{Name: filepath.Base(path), ContentType: constants.DocumentContentType, Data: data}
	res.HashHex = doc.HashHex()

	in.mu.Lock()
	prev, dup := in.seen[res.HashHex]
	in.mu.Unlock()
	if dup {
		prev.Path = path
		prev.Deduplicated = true
		in.log.Info("ingest.file.deduplicated", "path", path, "job_id", prev.JobID)
		return prev, nil
	}

	job, err := in.gen.Generate(ctx, pipeline.CreateRequest{
		Brand:         in.cfg.Brand,
		EquipmentType: in.cfg.EquipmentType,
		Document:      doc,
	})
	if job != nil {
		res.JobID = job.ID
	}
	if err != nil {
		return res, err
	}
	out, err := in.gen.Export(ctx, job.ID, in.cfg.Format)
	if err != nil {
		return res, err
	}
	// one export per manual, so prefix the manual's name
	out.Filename = strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name)) + "_" + out.Filename
	if res.ExportPath, err = in.saver.Save(ctx, out); err != nil {
		return res, err
	}

	in.mu.Lock()
	in.seen[res.HashHex] = res
	in.mu.Unlock()
	in.log.Info("ingest.file.ok", "path", path, "job_id", res.JobID, "export", res.ExportPath)
	return res, nil
}

// IngestDirectory walks root and ingests every PDF. Per-file failures are
// recorded in the results; only a walk failure of root itself is returned.
func (in *Ingestor) IngestDirectory(ctx context.Context, root string) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root directory is required")
	}

	var results []Result
	var stats DirStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, Result{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if in.cfg.SkipHidden && path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !isPDF(path) {
			return nil
		}
		stats.Matched++

		res, err := in.IngestPath(ctx, path)
		if err != nil {
			res.Err = err.Error()
			results = append(results, res)
			stats.Failed++
			in.log.Warn("ingest.file.failed", "path", path, "error", err)
			return nil
		}
		results = append(results, res)
		stats.Succeeded++
		if res.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	in.log.Info("ingest.dir.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

func isPDF(path string) bool {
	return constants.NormalizeExt(filepath.Ext(path)) == constants.DocumentExt
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

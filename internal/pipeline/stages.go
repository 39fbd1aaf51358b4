package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/rspl-generator/internal/catalog"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
	"github.com/joseph-ayodele/rspl-generator/internal/identify"
	"github.com/joseph-ayodele/rspl-generator/internal/source"
	"github.com/joseph-ayodele/rspl-generator/internal/synth"
)

// Progress checkpoints of a run.
const (
	ProgressResolving   = 20
	ProgressEvidence    = 40
	ProgressIdentifying = 50
	ProgressIdentified  = 75
	ProgressSynthesized = 95
	ProgressDone        = 100
)

// runLogger tags logger with the job and request ids carried by ctx.
func runLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := common.JobIDFromContext(ctx); id != "" {
		logger = logger.With("job_id", id)
	}
	if id := common.RequestIDFromContext(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	return logger
}

// EvidenceResolver is satisfied by *source.Resolver.
type EvidenceResolver interface {
	Resolve(ctx context.Context, req source.Request) (source.Evidence, error)
}

// ResolveStage obtains evidence for a job.
type ResolveStage struct {
	Resolver EvidenceResolver
	Logger   *slog.Logger
}

func (s *ResolveStage) Run(ctx context.Context, job *entity.Job, req source.Request) (source.Evidence, error) {
	start := time.Now()
	ev, err := s.Resolver.Resolve(ctx, req)
	if err != nil {
		return ev, err
	}
	runLogger(ctx, s.Logger).Info("pipeline.resolve.ok",
		"kind", ev.Kind,
		"method", ev.Method,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ev, nil
}

// IdentifyStage turns evidence into candidates using the catalog.
type IdentifyStage struct {
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

func (s *IdentifyStage) Run(job *entity.Job, ev source.Evidence) []entity.CandidatePart {
	cands := identify.Identify(ev, job.EquipmentType, s.Catalog)
	s.Logger.Info("pipeline.identify.ok",
		"job_id", job.ID,
		"kind", ev.Kind,
		"candidates", len(cands),
	)
	return cands
}

// SynthesizeStage expands candidates into records.
type SynthesizeStage struct {
	Synth  *synth.Synthesizer
	Logger *slog.Logger
}

func (s *SynthesizeStage) Run(job *entity.Job, cands []entity.CandidatePart) []entity.PartRecord {
	recs := s.Synth.SynthesizeAll(cands, job.Brand, job.EquipmentType)
	s.Logger.Info("pipeline.synthesize.ok", "job_id", job.ID, "parts", len(recs))
	return recs
}

// Package pipeline owns the job collection and runs the generation pipeline:
// resolve evidence, identify parts, synthesize records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/async"
	"github.com/joseph-ayodele/rspl-generator/internal/catalog"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/extract"
	"github.com/joseph-ayodele/rspl-generator/internal/metrics"
	"github.com/joseph-ayodele/rspl-generator/internal/repository"
	"github.com/joseph-ayodele/rspl-generator/internal/source"
	"github.com/joseph-ayodele/rspl-generator/internal/synth"
)

const maxTextField = 200

// Config holds pipeline tuning.
type Config struct {
	// StageDelay is slept after each checkpoint to simulate latency.
	StageDelay time.Duration
	// MaxDocumentBytes bounds uploads; 0 disables the check.
	MaxDocumentBytes int64
}

type Deps struct {
	Jobs     repository.JobRepository
	Resolver EvidenceResolver
	Catalog  *catalog.Catalog
	Synth    *synth.Synthesizer
	Exporter *export.Exporter
	// NewQueue builds the scheduler for Submit; nil uses async.NewRunner.
	NewQueue func(run async.RunFunc) async.Queue
}

// CreateRequest is a generate request. Either Document or both text fields are required.
type CreateRequest struct {
	Brand         string
	EquipmentType string
	Document      *extract.Document
}

type Orchestrator struct {
	jobs     repository.JobRepository
	resolve  *ResolveStage
	ident    *IdentifyStage
	synth    *SynthesizeStage
	exporter *export.Exporter
	runner   async.Queue
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.Mutex
	docs map[string]*extract.Document // pending documents by job id
}

func New(deps Deps, cfg Config, logger *slog.Logger, opts ...async.Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	if deps.Synth == nil {
		deps.Synth = synth.NewSynthesizer(nil)
	}
	if deps.Exporter == nil {
		deps.Exporter = export.NewExporter(logger)
	}
	if deps.Jobs == nil {
		deps.Jobs = repository.NewMemoryJobRepository(logger)
	}
	if deps.Resolver == nil {
		deps.Resolver = source.NewResolver(nil, nil, logger)
	}
	o := &Orchestrator{
		jobs:     deps.Jobs,
		resolve:  &ResolveStage{Resolver: deps.Resolver, Logger: logger},
		ident:    &IdentifyStage{Catalog: deps.Catalog, Logger: logger},
		synth:    &SynthesizeStage{Synth: deps.Synth, Logger: logger},
		exporter: deps.Exporter,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		docs:     make(map[string]*extract.Document),
	}
	if deps.NewQueue != nil {
		o.runner = deps.NewQueue(o.RunPipeline)
	} else {
		o.runner = async.NewRunner(o.RunPipeline, logger, opts...)
	}
	return o
}

// CreateJob validates req, stores a new job and moves it to Processing.
// Invalid input is ErrInvalidRequest and leaves no job behind.
func (o *Orchestrator) CreateJob(ctx context.Context, req CreateRequest) (*entity.Job, error) {
	brand := strings.TrimSpace(req.Brand)
	equip := strings.TrimSpace(req.EquipmentType)
	doc := req.Document
	if doc.Empty() {
		doc = nil
	}

	v := common.NewValidator()
	if doc == nil {
		v.Field("brand", brand, common.Required)
		v.Field("equipment_type", equip, common.Required)
	}
	v.Field("brand", brand, common.MaxLength(maxTextField))
	v.Field("equipment_type", equip, common.MaxLength(maxTextField))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	if err := extract.ValidateDocument(doc, o.cfg.MaxDocumentBytes); err != nil {
		return nil, err
	}

	now := o.now()
	job := &entity.Job{
		Brand:         brand,
		EquipmentType: equip,
		Status:        constants.JobStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Results:       []entity.PartRecord{},
	}
	if doc != nil {
		job.SourceDocumentName = doc.Name
	}

	var err error
	for range 3 {
		job.ID = NewJobID(now)
		if err = o.jobs.Create(ctx, job); err == nil {
			break
		}
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeInternal, "create job", err)
	}

	if doc != nil {
		o.mu.Lock()
		o.docs[job.ID] = doc
		o.mu.Unlock()
		o.logger.Info("pipeline.document.accepted",
			"job_id", job.ID,
			"name", doc.Name,
			"bytes", len(doc.Data),
			"sha256", doc.HashHex(),
		)
	}

	if err := o.jobs.Start(ctx, job.ID); err != nil {
		o.takeDocument(job.ID)
		return nil, common.NewAppError(common.CodeInternal, "start job", err)
	}
	o.logger.Info("pipeline.job.created",
		"job_id", job.ID,
		"brand", brand,
		"equipment_type", equip,
		"has_document", doc != nil,
	)
	return o.jobs.Get(ctx, job.ID)
}

// RunPipeline runs a Processing job to a terminal state. A stage failure is
// recorded on the job and returned; later stages are not attempted.
func (o *Orchestrator) RunPipeline(ctx context.Context, id string) error {
	start := time.Now()
	job, err := o.jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != constants.JobStatusProcessing {
		return fmt.Errorf("run job %s: status is %s", id, job.Status)
	}
	doc := o.takeDocument(id)

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	ctx = common.WithJobID(ctx, id)
	log := runLogger(ctx, o.logger)
	log.Info("pipeline.run.start")

	recs, err := o.runStages(ctx, job, doc)
	if err != nil {
		return o.fail(ctx, job, err, start)
	}
	if err := o.jobs.Complete(ctx, id, recs); err != nil {
		return o.fail(ctx, job, err, start)
	}

	metrics.RecordJob(string(constants.JobStatusCompleted), time.Since(start))
	log.Info("pipeline.run.completed",
		"parts", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (o *Orchestrator) runStages(ctx context.Context, job *entity.Job, doc *extract.Document) ([]entity.PartRecord, error) {
	if err := o.checkpoint(ctx, job.ID, ProgressResolving); err != nil {
		return nil, err
	}
	ev, err := o.resolve.Run(ctx, job, source.Request{
		Document:      doc,
		Brand:         job.Brand,
		EquipmentType: job.EquipmentType,
	})
	if err != nil {
		return nil, err
	}
	if err := o.checkpoint(ctx, job.ID, ProgressEvidence); err != nil {
		return nil, err
	}

	if err := o.checkpoint(ctx, job.ID, ProgressIdentifying); err != nil {
		return nil, err
	}
	cands := o.ident.Run(job, ev)
	if err := o.checkpoint(ctx, job.ID, ProgressIdentified); err != nil {
		return nil, err
	}

	recs := o.synth.Run(job, cands)
	if len(recs) == 0 {
		return nil, common.NewAppError(common.CodeInternal, "no part records synthesized", common.ErrInternal)
	}
	if err := o.checkpoint(ctx, job.ID, ProgressSynthesized); err != nil {
		return nil, err
	}
	return recs, nil
}

// checkpoint records progress, then waits StageDelay.
func (o *Orchestrator) checkpoint(ctx context.Context, id string, progress int) error {
	if err := o.jobs.SetProgress(ctx, id, progress); err != nil {
		return err
	}
	runLogger(ctx, o.logger).Debug("pipeline.progress", "progress", progress)
	if o.cfg.StageDelay <= 0 {
		return nil
	}
	t := time.NewTimer(o.cfg.StageDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return common.NewAppError(common.CodeInternal, "pipeline interrupted", ctx.Err())
	case <-t.C:
		return nil
	}
}

func (o *Orchestrator) fail(ctx context.Context, job *entity.Job, cause error, start time.Time) error {
	msg := FailureMessage(cause)
	// the job must reach Failed even when ctx was cancelled
	if err := o.jobs.Fail(context.WithoutCancel(ctx), job.ID, msg); err != nil {
		o.logger.Error("pipeline.run.fail_record_error", "job_id", job.ID, "error", err)
	}
	metrics.RecordJob(string(constants.JobStatusFailed), time.Since(start))
	o.logger.Warn("pipeline.run.failed",
		"job_id", job.ID,
		"tag", common.TagOf(cause),
		"error", msg,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cause
}

// FailureMessage is the job error text: the taxonomy tag, then the cause.
func FailureMessage(err error) string {
	tag := common.TagOf(err)
	msg := err.Error()
	if strings.HasPrefix(msg, tag+":") {
		return msg
	}
	return tag + ": " + msg
}

// Submit creates a job and runs its pipeline in the background.
func (o *Orchestrator) Submit(ctx context.Context, req CreateRequest) (*entity.Job, error) {
	job, err := o.CreateJob(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := o.runner.Enqueue(ctx, async.Task{JobID: job.ID, SubmittedAt: time.Now()}); err != nil {
		o.takeDocument(job.ID)
		_ = o.jobs.Fail(ctx, job.ID, FailureMessage(common.NewAppError(common.CodeInternal, "schedule job", err)))
		return nil, common.NewAppError(common.CodeInternal, "schedule job", err)
	}
	return job, nil
}

// Generate creates a job and runs it to a terminal state before returning.
func (o *Orchestrator) Generate(ctx context.Context, req CreateRequest) (*entity.Job, error) {
	job, err := o.CreateJob(ctx, req)
	if err != nil {
		return nil, err
	}
	runErr := o.RunPipeline(ctx, job.ID)
	out, err := o.jobs.Get(context.WithoutCancel(ctx), job.ID)
	if err != nil {
		return nil, errors.Join(runErr, err)
	}
	return out, runErr
}

func (o *Orchestrator) GetJob(ctx context.Context, id string) (*entity.Job, error) {
	return o.jobs.Get(ctx, id)
}

func (o *Orchestrator) ListJobs(ctx context.Context) ([]*entity.Job, error) {
	return o.jobs.List(ctx)
}

// Export renders a Completed job. The job itself is never modified.
func (o *Orchestrator) Export(ctx context.Context, id string, format export.Format) (*export.Document, error) {
	job, err := o.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := o.exporter.Export(job, format)
	if err != nil {
		return nil, err
	}
	metrics.RecordExport(string(format))
	return doc, nil
}

// Shutdown stops accepting work and waits for running pipelines.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.runner.Shutdown(ctx)
}

// Wait blocks until all submitted pipelines have finished.
func (o *Orchestrator) Wait() {
	o.runner.Wait()
}

func (o *Orchestrator) takeDocument(id string) *extract.Document {
	o.mu.Lock()
	defer o.mu.Unlock()
	doc := o.docs[id]
	delete(o.docs, id)
	return doc
}

package main

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/rspl-generator/internal/catalog"
	"github.com/joseph-ayodele/rspl-generator/internal/common"
	"github.com/joseph-ayodele/rspl-generator/internal/extract"
	"github.com/joseph-ayodele/rspl-generator/internal/llm"
	"github.com/joseph-ayodele/rspl-generator/internal/llm/openai"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
	"github.com/joseph-ayodele/rspl-generator/internal/repository"
	"github.com/joseph-ayodele/rspl-generator/internal/source"
	"github.com/joseph-ayodele/rspl-generator/internal/synth"
)

// app is the wired object graph shared by serve and generate.
type app struct {
	cfg     *common.Config
	log     *slog.Logger
	jobs    repository.JobRepository
	orch    *pipeline.Orchestrator
	offline bool
}

func loadConfig(cmd *cobra.Command) (*common.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	var cfg *common.Config
	if envFile != "" {
		c, err := common.LoadConfigFile(envFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = common.LoadConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// buildApp wires config into an orchestrator. forceOffline skips the
// analysis service even when an API key is configured.
func buildApp(ctx context.Context, cfg *common.Config, logger *slog.Logger, forceOffline bool) (*app, error) {
	cat, err := catalog.Load(cfg.Pipeline.CatalogFile)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "load catalog", err)
	}

	jobs, err := repository.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "open job store", err)
	}

	var analyzer llm.PartAnalyzer
	offline := forceOffline || cfg.OfflineMode()
	if !offline {
		analyzer = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	}
	var extractor extract.TextExtractor = extract.NewPrintableExtractor(logger)
	if cfg.Pipeline.PdftotextBin != "" {
		extractor = extract.NewPDFTextExtractor(cfg.Pipeline.PdftotextBin, logger)
	}
	resolver := source.NewResolver(analyzer, extractor, logger)

	orch := pipeline.New(pipeline.Deps{
		Jobs:     jobs,
		Resolver: resolver,
		Catalog:  cat,
		Synth:    synth.NewSynthesizer(nil),
	}, pipeline.Config{
		StageDelay:       cfg.Pipeline.StageDelay,
		MaxDocumentBytes: extract.MaxBytesFromMB(cfg.Pipeline.MaxDocumentMB),
	}, logger)

	logger.Info("app.ready",
		"offline", offline,
		"store", cfg.Store.Driver,
		"catalog_keywords", len(cat.Keywords),
		"catalog_categories", len(cat.Categories),
	)
	return &app{cfg: cfg, log: logger, jobs: jobs, orch: orch, offline: offline}, nil
}

func (a *app) close(ctx context.Context) {
	a.orch.Shutdown(ctx)
	if err := a.jobs.Close(); err != nil {
		a.log.Warn("app.close.store_error", "error", err)
	}
}

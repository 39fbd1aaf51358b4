package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/extract"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one RSPL and save the export",
		Long: `Generate one RSPL synchronously and save the exported table.

Examples:
  rspl generate --brand Rational --type "Commercial Oven"
  rspl generate --document ./manual.pdf --format tsv --out ./exports`,
		RunE: runGenerate,
	}
	cmd.Flags().String("brand", "", "equipment brand")
	cmd.Flags().String("type", "", "equipment type")
	cmd.Flags().String("document", "", "path to a PDF manual")
	cmd.Flags().String("format", "", "export format: xlsx or tsv (default from EXPORT_FORMAT)")
	cmd.Flags().String("out", "", "output directory (default from EXPORT_DIR)")
	cmd.Flags().Bool("offline", false, "do not call the analysis service even if an API key is set")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	brand, _ := cmd.Flags().GetString("brand")
	equip, _ := cmd.Flags().GetString("type")
	docPath, _ := cmd.Flags().GetString("document")
	formatFlag, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	offline, _ := cmd.Flags().GetBool("offline")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if formatFlag == "" {
		formatFlag = cfg.Export.Format
	}
	if outDir == "" {
		outDir = cfg.Export.Dir
	}
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	req := pipeline.CreateRequest{Brand: brand, EquipmentType: equip}
	if docPath != "" {
		// #nosec G304 -- path is a command-line argument
		data, err := os.ReadFile(docPath)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		req.Document = &extract.Document{Name: filepath.Base(docPath), Data: data}
	}

	logger := newLogger(cfg.Log, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := buildApp(ctx, cfg, logger, offline)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	job, err := a.orch.Generate(ctx, req)
	if err != nil {
		return err
	}
	doc, err := a.orch.Export(ctx, job.ID, format)
	if err != nil {
		return err
	}
	path, err := export.NewDirSaver(outDir, logger).Save(ctx, doc)
	if err != nil {
		return err
	}

	s := export.Summarize(job)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d parts (%d preventive, %d corrective, %d consumable)\n",
		job.ID, s.Parts, s.Preventive, s.Corrective, s.Consumable)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

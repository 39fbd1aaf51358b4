package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/ingest"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate an RSPL for every PDF manual in a directory",
		Long: `Generate an RSPL for every PDF manual under a directory and save one
export per manual. With --watch, keep running and process manuals as they
appear.

Examples:
  rspl batch --dir ./manuals --brand Rational --type "Commercial Oven"
  rspl batch --dir ./inbox --watch --format tsv`,
		RunE: runBatch,
	}
	cmd.Flags().String("dir", "", "directory of PDF manuals")
	cmd.Flags().String("brand", "", "brand applied to every manual")
	cmd.Flags().String("type", "", "equipment type applied to every manual")
	cmd.Flags().String("format", "", "export format: xlsx or tsv (default from EXPORT_FORMAT)")
	cmd.Flags().String("out", "", "output directory (default from EXPORT_DIR)")
	cmd.Flags().Bool("include-hidden", false, "also process hidden files and directories")
	cmd.Flags().Bool("watch", false, "keep watching the directory for new manuals")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "coalesce bursts of file events when watching")
	cmd.Flags().Bool("offline", false, "do not call the analysis service even if an API key is set")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func runBatch(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	brand, _ := cmd.Flags().GetString("brand")
	equip, _ := cmd.Flags().GetString("type")
	formatFlag, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	includeHidden, _ := cmd.Flags().GetBool("include-hidden")
	watch, _ := cmd.Flags().GetBool("watch")
	debounce, _ := cmd.Flags().GetDuration("debounce")
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

	logger := newLogger(cfg.Log, cmd.ErrOrStderr())
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, offline)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	in := ingest.NewIngestor(a.orch, export.NewDirSaver(outDir, logger), ingest.Config{
		Brand:         brand,
		EquipmentType: equip,
		Format:        format,
		SkipHidden:    !includeHidden,
	}, logger)

	w := cmd.OutOrStdout()
	report := func(r ingest.Result) {
		switch {
		case r.Err != "":
			fmt.Fprintf(w, "FAIL\t%s\t%s\n", r.Path, r.Err)
		case r.Deduplicated:
			fmt.Fprintf(w, "DUP\t%s\t%s\n", r.Path, r.ExportPath)
		default:
			fmt.Fprintf(w, "OK\t%s\t%s\n", r.Path, r.ExportPath)
		}
	}

	if watch {
		return in.Watch(ctx, ingest.WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: debounce}, report)
	}

	results, stats, err := in.IngestDirectory(ctx, dir)
	for _, r := range results {
		report(r)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "scanned=%d matched=%d succeeded=%d deduplicated=%d failed=%d\n",
		stats.Scanned, stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d manual(s) failed", stats.Failed)
	}
	return nil
}

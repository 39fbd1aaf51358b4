package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rspl-generator/internal/export"
	"github.com/joseph-ayodele/rspl-generator/internal/pipeline"
	"github.com/joseph-ayodele/rspl-generator/internal/repository"
	"github.com/joseph-ayodele/rspl-generator/internal/synth"
)

func newIngestor(t *testing.T, cfg Config) (*Ingestor, string) {
	t.Helper()
	o := pipeline.New(pipeline.Deps{
		Jobs:  repository.NewMemoryJobRepository(nil),
		Synth: synth.NewSynthesizer(synth.FixedAttributes{CageCode: "12345", HSCode: "8419", CountryOfOrigin: "SE"}),
	}, pipeline.Config{}, nil)
	t.Cleanup(func() { o.Shutdown(context.Background()) })
	out := t.TempDir()
	return NewIngestor(o, export.NewDirSaver(out, nil), cfg, nil), out
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func TestIngestDirectory(t *testing.T) {
	in, out := newIngestor(t, Config{Brand: "Frima", EquipmentType: "Fryer", Format: export.FormatTSV, SkipHidden: true})
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "%PDF-1.4 thermostat")
	writeFile(t, filepath.Join(root, "sub", "b.PDF"), "%PDF-1.4 basket and hose")
	writeFile(t, filepath.Join(root, "sub", "copy-of-a.pdf"), "%PDF-1.4 thermostat")
	writeFile(t, filepath.Join(root, "notes.txt"), "thermostat")
	writeFile(t, filepath.Join(root, "broken.pdf"), "not really a pdf")
	writeFile(t, filepath.Join(root, ".hidden", "c.pdf"), "%PDF-1.4 valve")

	results, stats, err := in.IngestDirectory(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, uint32(5), stats.Scanned)
	assert.Equal(t, uint32(4), stats.Matched)
	assert.Equal(t, uint32(3), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(1), stats.Failed)
	require.Len(t, results, 4)

	byName := map[string]Result{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}
	assert.NotEmpty(t, byName["broken.pdf"].Err)
	assert.True(t, byName["copy-of-a.pdf"].Deduplicated)
	assert.Equal(t, byName["a.pdf"].JobID, byName["copy-of-a.pdf"].JobID)
	assert.NotEqual(t, byName["a.pdf"].JobID, byName["b.PDF"].JobID)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	assert.FileExists(t, byName["a.pdf"].ExportPath)
	assert.FileExists(t, byName["b.PDF"].ExportPath)
	assert.True(t, strings.HasPrefix(filepath.Base(byName["b.PDF"].ExportPath), "b_RSPL_Frima_Fryer_"))
}

func TestIngestDirectory_MissingRoot(t *testing.T) {
	in, _ := newIngestor(t, Config{})
	_, _, err := in.IngestDirectory(context.Background(), "")
	require.Error(t, err)
	_, _, err = in.IngestDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestIngestPath_RejectsNonPDF(t *testing.T) {
	in, _ := newIngestor(t, Config{})
	p := filepath.Join(t.TempDir(), "manual.docx")
	writeFile(t, p, "PK")
	_, err := in.IngestPath(context.Background(), p)
	require.Error(t, err)
}

func TestWatch_InitialScan(t *testing.T) {
	in, _ := newIngestor(t, Config{Brand: "Rational", EquipmentType: "Oven"})
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "oven.pdf"), "%PDF-1.4 heating element")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Result, 1)
	done := make(chan error, 1)
	go func() {
		done <- in.Watch(ctx, WatchConfig{Roots: []string{root}, InitialScan: true}, func(r Result) { got <- r })
	}()

	select {
	case r := <-got:
		assert.Empty(t, r.Err)
		assert.NotEmpty(t, r.JobID)
		assert.FileExists(t, r.ExportPath)
	case <-time.After(10 * time.Second):
		t.Fatal("no result from watcher")
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	require.Error(t, err)
}

package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rspl-generator/internal/common"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("JOB_STORE", "memory")
	t.Setenv("LOG_LEVEL", "error")
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerate_WritesTSV(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, err := runCmd(t, "generate", "--offline",
		"--brand", "Rational", "--type", "Commercial Oven", "--format", "tsv", "--out", dir)
	require.NoError(t, err, stderr)

	path := strings.TrimSpace(stdout)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "RSPL_Rational_Commercial-Oven_"))
	assert.Contains(t, stderr, "4 parts")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '\t'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestGenerate_Document(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "fryer.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4 replace the thermostat"), 0o600))

	stdout, stderr, err := runCmd(t, "generate", "--offline", "--document", pdf, "--out", dir)
	require.NoError(t, err, stderr)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), ".xlsx"))
	assert.Contains(t, stderr, "1 parts")
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runCmd(t, "generate", "--offline", "--brand", "Rational", "--out", dir)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidRequest, common.TagOf(err))

	_, _, err = runCmd(t, "generate", "--offline", "--brand", "A", "--type", "B", "--format", "csv", "--out", dir)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidRequest, common.TagOf(err))

	_, _, err = runCmd(t, "generate", "--offline", "--document", filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(common.LogConfig{Level: "warn", Format: "json"}, &buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestBatch(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "one.pdf"), []byte("%PDF-1.4 pump and valve"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "two.pdf"), []byte("%PDF-1.4 pump and valve"), 0o600))

	stdout, stderr, err := runCmd(t, "batch", "--offline", "--dir", in, "--out", out,
		"--brand", "Winterhalter", "--type", "Dishwasher", "--format", "tsv")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "OK\t")
	assert.Contains(t, stdout, "DUP\t")
	assert.Contains(t, stderr, "succeeded=2 deduplicated=1 failed=0")
}

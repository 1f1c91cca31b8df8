package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alvmarrod/rank-weaver/internal/storage"
	"gotest.tools/v3/assert"
)

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"1.html": `<a href="2.html">2</a>`,
		"2.html": `<a href="1.html">1</a><a href="3.html">3</a>`,
		"3.html": `<a href="2.html">2</a><a href="4.html">4</a>`,
		"4.html": `<a href="2.html">2</a>`,
	}
	for name, body := range files {
		assert.NilError(t, os.WriteFile(filepath.Join(dir, name), []byte("<html><body>"+body+"</body></html>"), 0644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRankDirectory(t *testing.T) {
	dir := writeCorpus(t)
	metricsPath := filepath.Join(t.TempDir(), "metrics.json")

	out, err := execute(t, dir, "--samples", "2000", "--seed", "11", "--metrics", metricsPath, "--log-level", "warn")
	assert.NilError(t, err)

	assert.Assert(t, strings.Contains(out, "PageRank Results from Sampling (n = 2000)\n  1.html: "), out)
	assert.Assert(t, strings.Contains(out, "PageRank Results from Iteration\n  1.html: "), out)
	assert.Assert(t, strings.Contains(out, "L1 distance between estimates: "), out)

	raw, err := os.ReadFile(metricsPath)
	assert.NilError(t, err)
	var m storage.Metrics
	assert.NilError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, m.Pages, 4)
	assert.Equal(t, m.Links, 6)
	assert.Equal(t, m.PagesParsed, 4)
	assert.Equal(t, m.Seed, uint64(11))
	assert.Equal(t, m.Samples, 2000)
	assert.Assert(t, m.Iterations > 0)
	assert.Equal(t, m.TerminationReason, "completed")
}

func TestRankIsReproducibleWithSeed(t *testing.T) {
	dir := writeCorpus(t)
	first, err := execute(t, dir, "--samples", "300", "--seed", "3", "--log-level", "error")
	assert.NilError(t, err)
	second, err := execute(t, dir, "--samples", "300", "--seed", "3", "--log-level", "error")
	assert.NilError(t, err)
	assert.Equal(t, first, second)
}

func TestSnapshotThenRankDatabase(t *testing.T) {
	dir := writeCorpus(t)
	dbPath := filepath.Join(t.TempDir(), "crawl.db")

	out, err := execute(t, "snapshot", dir, dbPath, "--log-level", "warn")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(out, "written to "+dbPath), out)

	fromDir, err := execute(t, dir, "--seed", "5", "--samples", "100", "--log-level", "warn")
	assert.NilError(t, err)
	fromDB, err := execute(t, "--db", dbPath, "--seed", "5", "--samples", "100", "--log-level", "warn")
	assert.NilError(t, err)
	assert.Equal(t, fromDB, fromDir)
}

func TestRankErrors(t *testing.T) {
	_, err := execute(t, "--log-level", "warn")
	assert.ErrorContains(t, err, "a corpus directory or --db is required")

	_, err = execute(t, writeCorpus(t), "--damping", "1")
	assert.ErrorContains(t, err, "damping_factor must be in (0, 1)")

	_, err = execute(t, t.TempDir(), "--log-level", "warn")
	assert.ErrorContains(t, err, "corpus has no pages")

	_, err = execute(t, writeCorpus(t), "--config", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to open config file")

	_, err = execute(t, writeCorpus(t), "--tolerance", "1e-300", "--max-iterations", "1", "--log-level", "warn")
	assert.ErrorContains(t, err, "did not converge")
}

func TestFlagsOverrideInvalidLowerLayers(t *testing.T) {
	dir := writeCorpus(t)
	configPath := filepath.Join(t.TempDir(), "config.json")
	assert.NilError(t, os.WriteFile(configPath, []byte(`{"damping_factor": 1.5}`), 0644))
	t.Setenv("RANKWEAVER_SAMPLES", "-5")

	_, err := execute(t, dir, "--config", configPath, "--log-level", "warn")
	assert.ErrorContains(t, err, "damping_factor must be in (0, 1), got 1.5")
	assert.ErrorContains(t, err, "samples must be >= 1, got -5")

	out, err := execute(t, dir, "--config", configPath, "--damping", "0.5", "--samples", "10", "--seed", "1", "--log-level", "warn")
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(out, "PageRank Results from Sampling (n = 10)"), out)
}

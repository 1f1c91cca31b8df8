package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
	"github.com/alvmarrod/rank-weaver/internal/rank"
	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func TestCrawlCallbackConcurrent(t *testing.T) {
	t.Parallel()
	tracker := NewTracker("dir:corpus")
	callback := tracker.CrawlCallback()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callback(1, 0, 0)
			callback(0, 1, 0)
			callback(0, 1, 0)
		}()
	}
	callback(0, 0, 1)
	wg.Wait()

	snapshot := tracker.GetSnapshot()
	assert.Equal(t, snapshot.PagesParsed, 50)
	assert.Equal(t, snapshot.LinksRecorded, 100)
	assert.Equal(t, snapshot.PagesFailed, 1)
}

func TestWriteToFile(t *testing.T) {
	t.Parallel()
	tracker := NewTracker("sqlite:crawl.db")
	_, err := uuid.Parse(tracker.RunID())
	assert.NilError(t, err)

	tracker.RecordCorpus(corpus.New(map[string][]string{"a": {"b"}, "b": nil}))
	tracker.RecordSampling(0.85, 1000, 7, 12*time.Millisecond)
	tracker.RecordIteration(0.001, rank.Convergence{Iterations: 9, MaxDelta: 0.0004}, 3*time.Millisecond)
	tracker.RecordDistance(0.02)

	path := filepath.Join(t.TempDir(), "metrics.json")
	assert.NilError(t, tracker.WriteToFile(path, "completed"))

	raw, err := os.ReadFile(path)
	assert.NilError(t, err)
	var m storage.Metrics
	assert.NilError(t, json.Unmarshal(raw, &m))

	assert.Equal(t, m.RunID, tracker.RunID())
	assert.Equal(t, m.CorpusSource, "sqlite:crawl.db")
	assert.Equal(t, m.Pages, 2)
	assert.Equal(t, m.Links, 1)
	assert.Equal(t, m.DanglingPages, 1)
	assert.Equal(t, m.Samples, 1000)
	assert.Equal(t, m.Seed, uint64(7))
	assert.Equal(t, m.SampleTimeMs, int64(12))
	assert.Equal(t, m.Iterations, 9)
	assert.Equal(t, m.IterateTimeMs, int64(3))
	assert.Equal(t, m.TerminationReason, "completed")
	assert.Assert(t, !m.EndTime.Before(m.StartTime))

	assert.Assert(t, tracker.LogProgress() != "")
}

func TestWriteToFileBadPath(t *testing.T) {
	t.Parallel()
	tracker := NewTracker("dir:x")
	err := tracker.WriteToFile(filepath.Join(t.TempDir(), "missing", "metrics.json"), "error")
	assert.ErrorContains(t, err, "failed to write metrics file")
}

package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
	"github.com/alvmarrod/rank-weaver/internal/rank"
	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/google/uuid"
)

// Tracker holds and manages metrics for one ranking run
type Tracker struct {
	mu   sync.Mutex
	data storage.Metrics
}

// NewTracker creates a new metrics tracker with a fresh run id
func NewTracker(source string) *Tracker {
	return &Tracker{
		data: storage.Metrics{
			RunID:        uuid.NewString(),
			StartTime:    time.Now(),
			CorpusSource: source,
		},
	}
}

// RunID returns the identifier of this run
func (t *Tracker) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.RunID
}

// IncrementPagesParsed increments the parsed pages counter
func (t *Tracker) IncrementPagesParsed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesParsed++
}

// IncrementPagesFailed increments the failed pages counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// IncrementLinksRecorded increments the recorded links counter
func (t *Tracker) IncrementLinksRecorded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksRecorded++
}

// CrawlCallback adapts the tracker to the crawler's metrics callback
func (t *Tracker) CrawlCallback() func(pagesParsed, linksRecorded, pagesFailed int) {
	return func(pagesParsed, linksRecorded, pagesFailed int) {
		if pagesParsed > 0 {
			t.IncrementPagesParsed()
		}
		if linksRecorded > 0 {
			t.IncrementLinksRecorded()
		}
		if pagesFailed > 0 {
			t.IncrementPagesFailed()
		}
	}
}

// RecordCorpus records the shape of the corpus being ranked
func (t *Tracker) RecordCorpus(c *corpus.Corpus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Pages = c.Len()
	t.data.Links = c.EdgeCount()
	t.data.DanglingPages = len(c.Dangling())
}

// RecordSampling records a SampleRank run
func (t *Tracker) RecordSampling(dampingFactor float64, samples int, seed uint64, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.DampingFactor = dampingFactor
	t.data.Samples = samples
	t.data.Seed = seed
	t.data.SampleTimeMs = duration.Milliseconds()
}

// RecordIteration records an Iterate run
func (t *Tracker) RecordIteration(tolerance float64, result rank.Convergence, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Tolerance = tolerance
	t.data.Iterations = result.Iterations
	t.data.FinalMaxDelta = result.MaxDelta
	t.data.IterateTimeMs = duration.Milliseconds()
}

// RecordDistance records the L1 distance between both estimates
func (t *Tracker) RecordDistance(distance float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.L1Distance = distance
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress summarizes current metrics on one line
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Pages: %d (%d dangling) | Links: %d | Samples: %d in %dms | Iterations: %d in %dms | L1: %.4f",
		t.data.Pages,
		t.data.DanglingPages,
		t.data.Links,
		t.data.Samples,
		t.data.SampleTimeMs,
		t.data.Iterations,
		t.data.IterateTimeMs,
		t.data.L1Distance,
	)
}

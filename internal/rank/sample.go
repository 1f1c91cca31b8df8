package rank

import (
	"fmt"
	"math/rand/v2"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SampleRank estimates PageRank by walking n steps of the random surfer
// chain, starting on a page chosen uniformly by rng.
//
// At each step the running average of every page is blended with the
// current transition distribution, avg = (avg*(i-1) + dist)/i, and the next
// page is drawn from that distribution. The result is the time average of
// the distribution sequence rather than a count of visited pages.
func SampleRank(c *corpus.Corpus, dampingFactor float64, n int, rng *rand.Rand) (Vector, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	if err := checkDamping(dampingFactor); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: sample count %d must be >= 1", ErrInvalidParameter, n)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParameter)
	}

	m := newModel(c)
	size := len(m.pages)
	avg := make([]float64, size)
	dist := make([]float64, size)

	page := rng.IntN(size)
	for i := 1; i <= n; i++ {
		m.transition(page, dampingFactor, dist)

		step := float64(i)
		for j := range avg {
			avg[j] = (avg[j]*(step-1) + dist[j]) / step
		}

		page = weightedChoice(dist, rng)
	}

	logrus.Debugf("Sampled %d steps over %d pages", n, size)

	ranks := make(Vector, size)
	for i, p := range m.pages {
		ranks[p] = avg[i]
	}
	return ranks, nil
}

// weightedChoice draws an index with probability proportional to weights.
// Transition weights always sum to 1, so the draw cannot come up empty.
func weightedChoice(weights []float64, rng *rand.Rand) int {
	idx, ok := sampleuv.NewWeighted(weights, rng).Take()
	if !ok {
		panic("rank: weighted choice over zero weights")
	}
	return idx
}

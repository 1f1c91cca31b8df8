package rank

import (
	"fmt"
	"math"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
	"github.com/sirupsen/logrus"
)

// IterateOptions configures the iterative PageRank solver.
type IterateOptions struct {
	DampingFactor float64 // in (0, 1)
	Tolerance     float64 // per-page convergence threshold, > 0
	MaxIterations int     // sweep ceiling; 0 means DefaultMaxIterations
}

// Convergence is the outcome of a successful Iterate call.
type Convergence struct {
	Ranks      Vector
	Iterations int     // sweeps performed
	MaxDelta   float64 // largest per-page change in the final sweep
}

// IterateRank runs Iterate with the default iteration ceiling and returns
// only the ranks.
func IterateRank(c *corpus.Corpus, dampingFactor, tolerance float64) (Vector, error) {
	result, err := Iterate(c, IterateOptions{
		DampingFactor: dampingFactor,
		Tolerance:     tolerance,
	})
	if err != nil {
		return nil, err
	}
	return result.Ranks, nil
}

// Iterate computes PageRank by repeatedly applying
//
//	PR(p) = (1-d)/N + d * Σ contribution(q, p)
//
// to every page, starting from 1/N. A page q with links gives
// PR(q)/|links(q)| to each page it links to; a page without links gives
// PR(q)/N to every page. Sweeps are synchronous: each one reads only the
// previous rank vector. The solver stops once no page moved by more than
// opts.Tolerance, or fails with ErrNonConvergence when the ceiling is hit.
func Iterate(c *corpus.Corpus, opts IterateOptions) (Convergence, error) {
	if c.Len() == 0 {
		return Convergence{}, ErrEmptyCorpus
	}
	if err := checkDamping(opts.DampingFactor); err != nil {
		return Convergence{}, err
	}
	if err := checkTolerance(opts.Tolerance); err != nil {
		return Convergence{}, err
	}
	if opts.MaxIterations < 0 {
		return Convergence{}, fmt.Errorf("%w: max iterations %d must be >= 0", ErrInvalidParameter, opts.MaxIterations)
	}
	maxIterations := opts.MaxIterations
	if maxIterations == 0 {
		maxIterations = DefaultMaxIterations
	}

	m := newModel(c)
	size := len(m.pages)
	nf := float64(size)
	d := opts.DampingFactor
	base := (1 - d) / nf

	// inbound[p] lists the linking pages of p
	inbound := make([][]int, size)
	var dangling []int
	for q, links := range m.outlinks {
		if len(links) == 0 {
			dangling = append(dangling, q)
			continue
		}
		for _, p := range links {
			inbound[p] = append(inbound[p], q)
		}
	}

	rank := make([]float64, size)
	next := make([]float64, size)
	for i := range rank {
		rank[i] = 1 / nf
	}

	var maxDelta float64
	for iter := 1; iter <= maxIterations; iter++ {
		var danglingSum float64
		for _, q := range dangling {
			danglingSum += rank[q]
		}
		danglingShare := danglingSum / nf

		maxDelta = 0
		for p := range next {
			sum := danglingShare
			for _, q := range inbound[p] {
				sum += rank[q] / float64(len(m.outlinks[q]))
			}
			next[p] = base + d*sum

			if delta := math.Abs(next[p] - rank[p]); delta > maxDelta {
				maxDelta = delta
			}
		}
		rank, next = next, rank

		logrus.Debugf("Iteration %d: max change %.6g", iter, maxDelta)

		if maxDelta <= opts.Tolerance {
			ranks := make(Vector, size)
			for i, p := range m.pages {
				ranks[p] = rank[i]
			}
			return Convergence{Ranks: ranks, Iterations: iter, MaxDelta: maxDelta}, nil
		}
	}

	return Convergence{}, fmt.Errorf("%w: max change %g after %d iterations (tolerance %g)",
		ErrNonConvergence, maxDelta, maxIterations, opts.Tolerance)
}
